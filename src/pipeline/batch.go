package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/metrics"
	"github-workflow-splunk-logger/src/provider"
	"github-workflow-splunk-logger/src/store"
)

// ErrBatchIncomplete is returned when some runs failed and the batch was
// allowed to continue past them.
var ErrBatchIncomplete = errors.New("batch finished with failed runs")

// RunFailure records a run that could not be forwarded.
type RunFailure struct {
	RunID int64
	Err   error
}

// BatchReport summarizes a batch.
type BatchReport struct {
	Processed []forwarder.Result
	Failed    []RunFailure
}

// EventsDelivered totals delivered events over processed runs.
func (r *BatchReport) EventsDelivered() int {
	total := 0
	for _, res := range r.Processed {
		total += res.EventsDelivered
	}
	return total
}

// ProgressReporter is told about each run before it is forwarded. done
// counts the runs already handled, failed ones included.
type ProgressReporter interface {
	RunStarted(done, total int, runID int64)
}

// Batch forwards queued runs one at a time.
type Batch struct {
	Queue     store.RunQueue
	Forwarder RunForwarder
	Repo      provider.RepoRef
	Logger    logger.Logger
	Metrics   metrics.Recorder
	Progress  ProgressReporter

	// Count caps the runs taken from the queue; zero takes all.
	Count int
	// ContinueOnError keeps going after a failed run. Failed runs stay queued.
	ContinueOnError bool
}

// Run drains the queue. A run is marked processed only after all of its
// events were delivered, so rerunning after a failure resumes where the
// previous batch stopped.
func (b *Batch) Run(ctx context.Context) (*BatchReport, error) {
	log := b.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}
	rec := b.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	pending, err := b.Queue.Pending(ctx, b.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending runs: %w", err)
	}

	report := &BatchReport{}
	log.Info("Processing %d workflow run(s) from %s", len(pending), b.Repo)

	for i, runID := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if b.Progress != nil {
			b.Progress.RunStarted(i, len(pending), runID)
		}

		log.Info("Processing Workflow Run ID: %d", runID)

		result, err := b.Forwarder.FetchAndDeliver(ctx, b.Repo, runID)
		if err != nil {
			rec.RunProcessed(false)
			report.Failed = append(report.Failed, RunFailure{RunID: runID, Err: err})
			if !b.ContinueOnError {
				return report, fmt.Errorf("workflow run %d: %w", runID, err)
			}
			log.Error("Workflow Run ID %d failed: %v", runID, err)
			continue
		}

		if err := b.Queue.MarkProcessed(ctx, runID); err != nil {
			return report, fmt.Errorf("failed to mark run %d processed: %w", runID, err)
		}
		rec.RunProcessed(true)
		report.Processed = append(report.Processed, *result)
		log.Info("Workflow Run ID %d processed.", runID)
	}

	if len(report.Failed) > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrBatchIncomplete, len(report.Failed), len(pending))
	}
	return report, nil
}
