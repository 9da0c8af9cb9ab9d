// Package main provides the standalone ingest agent binary. It is configured
// entirely from the environment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github-workflow-splunk-logger/src/cmd/ingestion"
	"github-workflow-splunk-logger/src/config"
	"github-workflow-splunk-logger/src/ingest"
	"github-workflow-splunk-logger/src/provider"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err == nil {
		err = checkConfig(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", provider.WrapError(err))
		fmt.Fprintln(os.Stderr, "Example: export REDPANDA_BROKERS=localhost:19092")
		os.Exit(1)
	}

	comps, err := ingestion.Build(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", provider.WrapError(err))
		os.Exit(1)
	}

	comps.Logger.Info("Starting GitHub workflow ingest agent")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	groupID := os.Getenv("AGENT_GROUP_ID")
	if groupID == "" {
		groupID = ingest.DefaultGroupID
	}

	if err := comps.RunAgent(ctx, groupID); err != nil {
		fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func checkConfig(cfg *config.Config) error {
	for _, check := range []func() error{cfg.RequireSplunk, cfg.RequireGitHubToken, cfg.RequireRedpanda} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
