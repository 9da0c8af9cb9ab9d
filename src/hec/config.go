// Package hec delivers events to a Splunk HTTP Event Collector.
package hec

import (
	"strings"
	"time"

	"github-workflow-splunk-logger/src/provider"
)

const (
	// DefaultEndpoint is the raw-JSON collector path appended to the base URL.
	DefaultEndpoint = "/services/collector"

	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// Config holds everything a Sender needs to reach the collector.
type Config struct {
	URL        string
	Token      string
	Endpoint   string
	VerifyTLS  bool
	Timeout    time.Duration
	MaxRetries int
	Debug      bool
}

// DefaultConfig returns a config with the collector defaults filled in.
func DefaultConfig() Config {
	return Config{
		Endpoint:   DefaultEndpoint,
		VerifyTLS:  true,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// Validate reports the first missing or out-of-range option.
func (c Config) Validate() error {
	if c.URL == "" {
		return &provider.ConfigError{Option: "splunk_url"}
	}
	if c.Token == "" {
		return &provider.ConfigError{Option: "splunk_token"}
	}
	if c.MaxRetries < 1 {
		return &provider.ConfigError{Option: "max_retries", Reason: "must be at least 1"}
	}
	if c.Timeout <= 0 {
		return &provider.ConfigError{Option: "timeout", Reason: "must be positive"}
	}
	return nil
}

// EndpointURL joins the base URL and the collector path.
func (c Config) EndpointURL() string {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return strings.TrimSuffix(c.URL, "/") + endpoint
}
