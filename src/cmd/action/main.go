// Package main is the GitHub Action entrypoint. Inputs arrive as INPUT_*
// variables and the run defaults to the one that triggered the workflow.
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
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/provider"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.NewActionsLogger(os.Stdout).Error("%v", provider.WrapError(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return err
	}
	if os.Getenv("INPUT_LOG_FORMAT") == "" && os.Getenv("GITHUB_ACTIONS") == "true" {
		cfg.LogFormat = logger.FormatActions
	}

	for _, check := range []func() error{cfg.RequireSplunk, cfg.RequireGitHub, cfg.RequireRunID} {
		if err := check(); err != nil {
			return err
		}
	}

	comps, err := ingestion.Build(cfg, os.Stdout)
	if err != nil {
		return err
	}
	repo, err := cfg.RepoRef()
	if err != nil {
		return err
	}

	result, err := comps.Forwarder().FetchAndDeliver(ctx, repo, cfg.RunID)
	if err != nil {
		return err
	}

	if out := os.Getenv("GITHUB_OUTPUT"); out != "" {
		if err := writeOutputs(out, result.EventsDelivered, result.LogFailures); err != nil {
			comps.Logger.Error("Failed to write step outputs: %v", err)
		}
	}
	return nil
}

func writeOutputs(path string, events, logFailures int) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "events-delivered=%d\nlog-failures=%d\n", events, logFailures)
	return err
}
