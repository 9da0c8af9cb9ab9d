// Package main provides the MCP server entry point. It lets an MCP client
// preview and forward GitHub Actions workflow runs over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github-workflow-splunk-logger/src/cmd/ingestion"
	"github-workflow-splunk-logger/src/config"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/provider"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err == nil {
		err = cfg.RequireGitHubToken()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", provider.WrapError(err))
		os.Exit(1)
	}

	// stdout carries the protocol
	log := logger.NewStructuredLogger(os.Stderr, cfg.Debug)
	comps, err := ingestion.BuildWithLogger(cfg, log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", provider.WrapError(err))
		os.Exit(1)
	}

	if err := comps.MCPServer().Run(); err != nil {
		log.Error("MCP server error: %v", err)
		os.Exit(1)
	}
}
