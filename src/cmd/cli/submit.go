package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github-workflow-splunk-logger/src/broker"
	"github-workflow-splunk-logger/src/ingest"
	"github-workflow-splunk-logger/src/store"
)

func newSubmitCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit-workflow-runs [run-id...]",
		Short: "Queue workflow runs for the ingest agent",
		Long: `Publishes one request per workflow run to Redpanda. A running ingest agent
forwards them and publishes the outcome.

Example:
  github-workflow-splunk-logger submit-workflow-runs --repo acme/widgets 123 124
  github-workflow-splunk-logger submit-workflow-runs --repo acme/widgets -f runs.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.RequireRedpanda(); err != nil {
				return err
			}
			repo, err := cfg.RepoRef()
			if err != nil {
				return err
			}

			runIDs, err := parseRunIDs(args)
			if err != nil {
				return err
			}
			if file != "" {
				q, err := store.NewFileQueue(file)
				if err != nil {
					return err
				}
				fromFile, err := q.Pending(cmd.Context(), 0)
				if err != nil {
					return err
				}
				runIDs = append(runIDs, fromFile...)
			}
			if len(runIDs) == 0 {
				return fmt.Errorf("no workflow run IDs given")
			}

			log, err := a.logger()
			if err != nil {
				return err
			}
			brk, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers, log)
			if err != nil {
				return err
			}
			defer brk.Close()

			requestIDs, err := ingest.Submit(cmd.Context(), brk, repo, runIDs...)
			for i, id := range requestIDs {
				fmt.Fprintf(a.out, "Submitted workflow run %d as %s\n", runIDs[i], id)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "workflow-ids-file", "f", "", "File with one workflow run ID per line")
	return cmd
}

func parseRunIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid workflow run ID %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
