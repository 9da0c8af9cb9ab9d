package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github-workflow-splunk-logger/src/cmd/ingestion"
	"github-workflow-splunk-logger/src/provider"
	"github-workflow-splunk-logger/src/report"
)

func newRunCmd(a *app) *cobra.Command {
	var runURL string

	cmd := &cobra.Command{
		Use:   "process-workflow-run",
		Short: "Forward a single workflow run",
		Long: `Fetches one workflow run and sends its workflow event and job events to
Splunk HEC. The run is selected with --run-id and --repo, or with --run-url.

Example:
  github-workflow-splunk-logger process-workflow-run --repo acme/widgets -r 123456
  github-workflow-splunk-logger process-workflow-run --run-url https://github.com/acme/widgets/actions/runs/123456`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if runURL != "" {
				repo, runID, err := provider.ParseRunURL(runURL)
				if err != nil {
					return err
				}
				cfg.Repository = repo.String()
				cfg.RunID = runID
			}

			if err := checkAll(cfg.RequireSplunk, cfg.RequireGitHub, cfg.RequireRunID); err != nil {
				return err
			}

			comps, err := ingestion.Build(cfg, a.out)
			if err != nil {
				return err
			}
			repo, err := cfg.RepoRef()
			if err != nil {
				return err
			}

			result, err := comps.Forwarder().FetchAndDeliver(cmd.Context(), repo, cfg.RunID)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, report.NewSummary().Run(repo.String(), result, cfg.Debug))
			return nil
		},
	}

	cmd.Flags().Int64P("run-id", "r", 0, "Workflow run ID")
	cmd.Flags().StringVar(&runURL, "run-url", "", "Workflow run URL (sets --repo and --run-id)")
	return cmd
}
