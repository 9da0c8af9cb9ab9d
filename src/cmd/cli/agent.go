package main

import (
	"github.com/spf13/cobra"

	"github-workflow-splunk-logger/src/cmd/ingestion"
	"github-workflow-splunk-logger/src/ingest"
)

func newAgentCmd(a *app) *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Forward workflow runs requested over Redpanda",
		Long: `Consumes run requests published by submit-workflow-runs, forwards each run
and publishes the outcome. Replicas sharing a --group-id split the work.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := checkAll(cfg.RequireSplunk, cfg.RequireGitHubToken, cfg.RequireRedpanda); err != nil {
				return err
			}

			comps, err := ingestion.Build(cfg, a.out)
			if err != nil {
				return err
			}
			return comps.RunAgent(cmd.Context(), groupID)
		},
	}

	cmd.Flags().StringVar(&groupID, "group-id", ingest.DefaultGroupID, "Consumer group")
	return cmd
}
