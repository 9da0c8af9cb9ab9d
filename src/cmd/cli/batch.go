package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github-workflow-splunk-logger/src/cmd/ingestion"
	"github-workflow-splunk-logger/src/pipeline"
	"github-workflow-splunk-logger/src/report"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		file            string
		count           int
		continueOnError bool
	)

	cmd := &cobra.Command{
		Use:   "process-workflow-run-batch",
		Short: "Forward the workflow runs listed in a file",
		Long: `Forwards workflow runs one at a time from a file holding one run ID per
line. Each forwarded run is removed from the file, so an interrupted batch
resumes where it stopped.

With --postgres-dsn the queue lives in Postgres instead and the file, when
given, is imported into it first. Several workers can then share one queue.

Example:
  github-workflow-splunk-logger process-workflow-run-batch --repo acme/widgets -f runs.txt -c 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := checkAll(cfg.RequireSplunk, cfg.RequireGitHub); err != nil {
				return err
			}

			repo, err := cfg.RepoRef()
			if err != nil {
				return err
			}

			// On a terminal, log lines print above a spinner that tracks the batch.
			var progress *report.Progress
			if a.interactive() {
				progress = report.StartProgress(cmd.Context(), a.out)
				defer progress.Finish()
			}

			var comps *ingestion.Components
			if progress != nil {
				comps, err = ingestion.BuildWithLogger(cfg, progress, a.out)
			} else {
				comps, err = ingestion.Build(cfg, a.out)
			}
			if err != nil {
				return err
			}

			queueCfg := pipeline.QueueConfig{File: file, PostgresDSN: cfg.PostgresDSN}
			comps.Logger.Debug("Using %s queue", pipeline.DetectMode(queueCfg))

			queue, err := pipeline.OpenQueue(cmd.Context(), queueCfg)
			if err != nil {
				return err
			}
			defer queue.Close()

			comps.ServeMetrics(cmd.Context())

			batch := &pipeline.Batch{
				Queue:           queue,
				Forwarder:       comps.Forwarder(),
				Repo:            repo,
				Logger:          comps.Logger,
				Metrics:         comps.Metrics,
				Count:           count,
				ContinueOnError: continueOnError,
			}
			if progress != nil {
				batch.Progress = progress
			}

			rep, err := batch.Run(cmd.Context())
			progress.Finish()
			if rep != nil {
				fmt.Fprintln(a.out, report.NewSummary().Batch(repo.String(), rep))
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "workflow-ids-file", "f", "", "File with one workflow run ID per line")
	cmd.Flags().IntVarP(&count, "count", "c", 0, "Process at most this many runs (0 = all)")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep going after a failed run; failed runs stay queued")
	return cmd
}
