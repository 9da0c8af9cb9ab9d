// Package config resolves the forwarder's options from flags, GitHub Action
// inputs, environment variables and an optional config file.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/hec"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/provider"
)

// Option keys. Flags use the same names with dashes; GitHub Action inputs
// arrive as INPUT_<KEY>.
const (
	KeyConfigFile      = "config"
	KeySplunkURL       = "splunk_url"
	KeySplunkToken     = "splunk_token"
	KeySplunkEndpoint  = "splunk_endpoint"
	KeyGitHubToken     = "github_token"
	KeyRepository      = "repository"
	KeyGitHubAPIURL    = "github_api_url"
	KeyGitHubRPS       = "github_rps"
	KeyRunID           = "run_id"
	KeyIndex           = "index"
	KeySourceType      = "source_type"
	KeySSLVerify       = "ssl_verify"
	KeyIncludeJobSteps = "include_job_steps"
	KeyIncludeJobLogs  = "include_job_logs"
	KeyMaxLogBytes     = "max_log_bytes"
	KeyStrictPRLookup  = "strict_pr_lookup"
	KeyTimeout         = "timeout"
	KeyMaxRetries      = "max_retries"
	KeyDebug           = "debug"
	KeyLogFormat       = "log_format"
	KeyPostgresDSN     = "postgres_dsn"
	KeyRedpandaBrokers = "redpanda_brokers"
	KeyMetricsAddr     = "metrics_addr"
)

var keys = []string{
	KeyConfigFile, KeySplunkURL, KeySplunkToken, KeySplunkEndpoint,
	KeyGitHubToken, KeyRepository, KeyGitHubAPIURL, KeyGitHubRPS, KeyRunID,
	KeyIndex, KeySourceType, KeySSLVerify, KeyIncludeJobSteps, KeyIncludeJobLogs,
	KeyMaxLogBytes, KeyStrictPRLookup, KeyTimeout, KeyMaxRetries, KeyDebug,
	KeyLogFormat, KeyPostgresDSN, KeyRedpandaBrokers, KeyMetricsAddr,
}

// plainEnv lists the conventional variables read after the action input.
var plainEnv = map[string][]string{
	KeySplunkURL:       {"SPLUNK_URL"},
	KeySplunkToken:     {"SPLUNK_TOKEN"},
	KeyGitHubToken:     {"GITHUB_TOKEN"},
	KeyRepository:      {"GITHUB_REPOSITORY"},
	KeyGitHubAPIURL:    {"GITHUB_API_URL"},
	KeyRunID:           {"GITHUB_RUN_ID"},
	KeyPostgresDSN:     {"POSTGRES_DSN", "DATABASE_URL"},
	KeyRedpandaBrokers: {"REDPANDA_BROKERS"},
	KeyMetricsAddr:     {"METRICS_ADDR"},
}

var defaults = map[string]any{
	KeySplunkEndpoint:  hec.DefaultEndpoint,
	KeyIndex:           forwarder.DefaultIndex,
	KeySourceType:      forwarder.DefaultSourceType,
	KeySSLVerify:       true,
	KeyIncludeJobSteps: true,
	KeyIncludeJobLogs:  true,
	KeyMaxLogBytes:     0,
	KeyStrictPRLookup:  false,
	KeyTimeout:         30,
	KeyMaxRetries:      hec.DefaultMaxRetries,
	KeyDebug:           false,
	KeyLogFormat:       logger.FormatConsole,
	KeyGitHubRPS:       0,
}

// Config is every resolved option.
type Config struct {
	SplunkURL      string
	SplunkToken    string
	SplunkEndpoint string

	GitHubToken  string
	Repository   string
	GitHubAPIURL string
	GitHubRPS    float64
	RunID        int64

	Index                   string
	SourceType              string
	SSLVerify               bool
	IncludeJobSteps         bool
	IncludeJobLogs          bool
	MaxLogBytes             int
	StrictPullRequestLookup bool

	Timeout    time.Duration
	MaxRetries int
	Debug      bool
	LogFormat  string

	PostgresDSN     string
	RedpandaBrokers []string
	MetricsAddr     string
}

// FlagName is the command-line spelling of a key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// BindFlags binds every flag in fs whose name matches a key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !slices.Contains(keys, key) {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	return bindErr
}

// Load resolves the configuration. Precedence, highest first: flags bound to
// v, INPUT_<KEY>, the plain environment variables, the config file, defaults.
// Load does not check required options; see the Require methods.
func Load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for _, key := range keys {
		names := append([]string{"INPUT_" + strings.ToUpper(key)}, plainEnv[key]...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	p := parser{v: v}
	cfg := &Config{
		SplunkURL:      strings.TrimSpace(v.GetString(KeySplunkURL)),
		SplunkToken:    strings.TrimSpace(v.GetString(KeySplunkToken)),
		SplunkEndpoint: v.GetString(KeySplunkEndpoint),

		GitHubToken:  strings.TrimSpace(v.GetString(KeyGitHubToken)),
		Repository:   strings.TrimSpace(v.GetString(KeyRepository)),
		GitHubAPIURL: v.GetString(KeyGitHubAPIURL),
		GitHubRPS:    p.float(KeyGitHubRPS),
		RunID:        p.int64(KeyRunID),

		Index:                   v.GetString(KeyIndex),
		SourceType:              v.GetString(KeySourceType),
		SSLVerify:               p.bool(KeySSLVerify),
		IncludeJobSteps:         p.bool(KeyIncludeJobSteps),
		IncludeJobLogs:          p.bool(KeyIncludeJobLogs),
		MaxLogBytes:             p.int(KeyMaxLogBytes),
		StrictPullRequestLookup: p.bool(KeyStrictPRLookup),

		Timeout:    time.Duration(p.float(KeyTimeout) * float64(time.Second)),
		MaxRetries: p.int(KeyMaxRetries),
		Debug:      p.bool(KeyDebug),
		LogFormat:  v.GetString(KeyLogFormat),

		PostgresDSN:     v.GetString(KeyPostgresDSN),
		RedpandaBrokers: p.list(KeyRedpandaBrokers),
		MetricsAddr:     v.GetString(KeyMetricsAddr),
	}
	if p.err != nil {
		return nil, p.err
	}

	switch {
	case cfg.Timeout <= 0:
		return nil, &provider.ConfigError{Option: KeyTimeout, Reason: "must be positive"}
	case cfg.MaxRetries < 1:
		return nil, &provider.ConfigError{Option: KeyMaxRetries, Reason: "must be at least 1"}
	case cfg.MaxLogBytes < 0:
		return nil, &provider.ConfigError{Option: KeyMaxLogBytes, Reason: "must not be negative"}
	}

	return cfg, nil
}

// RequireSplunk checks the collector options.
func (c *Config) RequireSplunk() error {
	if c.SplunkURL == "" {
		return &provider.ConfigError{Option: KeySplunkURL}
	}
	if c.SplunkToken == "" {
		return &provider.ConfigError{Option: KeySplunkToken}
	}
	return nil
}

// RequireGitHubToken checks the API token alone, for commands that take the
// repository per request.
func (c *Config) RequireGitHubToken() error {
	if c.GitHubToken == "" {
		return &provider.ConfigError{Option: KeyGitHubToken}
	}
	return nil
}

// RequireGitHub checks the options needed to read from GitHub.
func (c *Config) RequireGitHub() error {
	if err := c.RequireGitHubToken(); err != nil {
		return err
	}
	if c.Repository == "" {
		return &provider.ConfigError{Option: KeyRepository}
	}
	if _, err := provider.ParseRepository(c.Repository); err != nil {
		return &provider.ConfigError{Option: KeyRepository, Reason: err.Error()}
	}
	return nil
}

// RequireRedpanda checks that broker addresses are configured.
func (c *Config) RequireRedpanda() error {
	if len(c.RedpandaBrokers) == 0 {
		return &provider.ConfigError{Option: KeyRedpandaBrokers}
	}
	return nil
}

// RequireRunID checks that a single run was selected.
func (c *Config) RequireRunID() error {
	if c.RunID <= 0 {
		return &provider.ConfigError{Option: KeyRunID}
	}
	return nil
}

// RepoRef parses the configured repository.
func (c *Config) RepoRef() (provider.RepoRef, error) {
	return provider.ParseRepository(c.Repository)
}

// HECConfig converts the collector options.
func (c *Config) HECConfig() hec.Config {
	return hec.Config{
		URL:        c.SplunkURL,
		Token:      c.SplunkToken,
		Endpoint:   c.SplunkEndpoint,
		VerifyTLS:  c.SSLVerify,
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
		Debug:      c.Debug,
	}
}

// ForwarderOptions converts the event shaping options.
func (c *Config) ForwarderOptions() forwarder.Options {
	return forwarder.Options{
		SourceType:              c.SourceType,
		Index:                   c.Index,
		IncludeJobSteps:         c.IncludeJobSteps,
		IncludeJobLogs:          c.IncludeJobLogs,
		MaxLogBytes:             c.MaxLogBytes,
		StrictPullRequestLookup: c.StrictPullRequestLookup,
	}
}

// parser converts raw values and keeps the first failure.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) fail(key string, raw any) {
	if p.err == nil {
		p.err = &provider.ConfigError{Option: key, Reason: fmt.Sprintf("invalid value %q", fmt.Sprint(raw))}
	}
}

func (p *parser) raw(key string) any {
	raw := p.v.Get(key)
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return raw
}

func (p *parser) bool(key string) bool {
	raw := p.raw(key)
	b, err := cast.ToBoolE(raw)
	if err != nil {
		p.fail(key, raw)
	}
	return b
}

func (p *parser) int(key string) int {
	raw := p.raw(key)
	n, err := cast.ToIntE(raw)
	if err != nil {
		p.fail(key, raw)
	}
	return n
}

func (p *parser) int64(key string) int64 {
	raw := p.raw(key)
	n, err := cast.ToInt64E(raw)
	if err != nil {
		p.fail(key, raw)
	}
	return n
}

func (p *parser) float(key string) float64 {
	raw := p.raw(key)
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		p.fail(key, raw)
	}
	return f
}

func (p *parser) list(key string) []string {
	var out []string
	for _, item := range cast.ToStringSlice(p.raw(key)) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
