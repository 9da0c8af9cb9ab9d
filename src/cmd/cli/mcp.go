package main

import (
	"os"

	"github.com/spf13/cobra"

	"github-workflow-splunk-logger/src/cmd/ingestion"
	"github-workflow-splunk-logger/src/logger"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the forwarder as MCP tools over stdio",
		Long: `Runs a Model Context Protocol server on stdin/stdout with the tools
preview_workflow_run, get_event_details and, when Splunk is configured,
forward_workflow_run. Logs go to stderr as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.RequireGitHubToken(); err != nil {
				return err
			}

			// stdout carries the protocol
			log := logger.NewStructuredLogger(os.Stderr, cfg.Debug)
			comps, err := ingestion.BuildWithLogger(cfg, log, os.Stderr)
			if err != nil {
				return err
			}
			return comps.MCPServer().Run()
		},
	}
}
