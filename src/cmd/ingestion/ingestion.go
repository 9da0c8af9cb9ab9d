// Package ingestion wires the forwarder's components from a resolved
// configuration. Every binary builds on it.
package ingestion

import (
	"context"
	"errors"
	"io"
	"os"

	"github-workflow-splunk-logger/src/config"
	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/githubactions"
	"github-workflow-splunk-logger/src/hec"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/metrics"
	"github-workflow-splunk-logger/src/provider"
)

// Components are the long-lived pieces shared by a run.
type Components struct {
	Config   *config.Config
	Logger   logger.Logger
	Provider provider.Provider
	Sender   *hec.Sender
	Metrics  *metrics.Prometheus
}

// Build creates the components for cfg. The caller is expected to have
// checked the Require methods it needs. Debug previews go to preview, or
// stdout when preview is nil.
func Build(cfg *config.Config, preview io.Writer) (*Components, error) {
	log, err := logger.New(cfg.LogFormat, cfg.Debug)
	if err != nil {
		return nil, &provider.ConfigError{Option: config.KeyLogFormat, Reason: err.Error()}
	}
	return BuildWithLogger(cfg, log, preview)
}

// BuildWithLogger is Build with an explicit logger.
func BuildWithLogger(cfg *config.Config, log logger.Logger, preview io.Writer) (*Components, error) {
	if preview == nil {
		preview = os.Stdout
	}

	rec := metrics.NewPrometheus()

	gh := githubactions.NewProvider(cfg.GitHubToken,
		githubactions.WithBaseURL(cfg.GitHubAPIURL),
		githubactions.WithTimeout(cfg.Timeout),
		githubactions.WithRateLimit(cfg.GitHubRPS),
	)

	hecCfg := cfg.HECConfig()
	var sender *hec.Sender
	if cfg.SplunkURL != "" {
		if err := hecCfg.Validate(); err != nil {
			return nil, err
		}
		sender = hec.NewSender(hecCfg,
			hec.WithLogger(log),
			hec.WithMetrics(rec),
			hec.WithPreviewWriter(preview),
		)
	}

	return &Components{
		Config:   cfg,
		Logger:   log,
		Provider: gh,
		Sender:   sender,
		Metrics:  rec,
	}, nil
}

// Forwarder returns a forwarder delivering to the collector.
func (c *Components) Forwarder() *forwarder.Forwarder {
	var d forwarder.Deliverer
	if c.Sender != nil {
		d = c.Sender
	}
	fwd := forwarder.New(c.Provider, d, c.Config.ForwarderOptions(), c.Logger)
	fwd.SetMetrics(c.Metrics)
	return fwd
}

// ServeMetrics exposes the counters on the configured address until ctx is
// done. It returns at once when no address is configured.
func (c *Components) ServeMetrics(ctx context.Context) {
	addr := c.Config.MetricsAddr
	if addr == "" {
		return
	}

	go func() {
		c.Logger.Info("Serving metrics on %s/metrics", addr)
		if err := metrics.Serve(ctx, addr, c.Metrics.Handler()); err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.Error("Metrics server stopped: %v", err)
		}
	}()
}
