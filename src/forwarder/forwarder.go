// Package forwarder turns one workflow run into collector events: a
// workflow event followed by one event per job.
package forwarder

import (
	"context"
	"fmt"

	"github-workflow-splunk-logger/src/contracts"
	"github-workflow-splunk-logger/src/logger"
	"github-workflow-splunk-logger/src/metrics"
	"github-workflow-splunk-logger/src/provider"
	"github-workflow-splunk-logger/src/sanitize"
)

const (
	DefaultSourceType = "github:workflow:logs"
	DefaultIndex      = "github_workflows"
)

// Deliverer sends a single event to the collector.
type Deliverer interface {
	Deliver(ctx context.Context, event contracts.Event) error
}

// Options controls event shaping.
type Options struct {
	SourceType      string
	Index           string // omitted from events when empty
	IncludeJobSteps bool
	IncludeJobLogs  bool
	MaxLogBytes     int // 0 = unlimited

	// StrictPullRequestLookup fails the run when the pull request lookup
	// errors instead of sending an empty pull_request object.
	StrictPullRequestLookup bool
}

// DefaultOptions returns the shaping defaults.
func DefaultOptions() Options {
	return Options{
		SourceType:      DefaultSourceType,
		Index:           DefaultIndex,
		IncludeJobSteps: true,
		IncludeJobLogs:  true,
	}
}

// Result summarizes a processed run.
type Result struct {
	RunID           int64
	EventsDelivered int
	JobsDelivered   int
	LogFailures     int
}

// Forwarder fetches a run from the provider and hands its events to a Deliverer.
type Forwarder struct {
	provider  provider.Provider
	deliverer Deliverer
	opts      Options
	logger    logger.Logger
	metrics   metrics.Recorder
}

func New(p provider.Provider, d Deliverer, opts Options, log logger.Logger) *Forwarder {
	if opts.SourceType == "" {
		opts.SourceType = DefaultSourceType
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Forwarder{
		provider:  p,
		deliverer: d,
		opts:      opts,
		logger:    log,
		metrics:   metrics.Nop{},
	}
}

// SetMetrics records log fetch failures on r.
func (f *Forwarder) SetMetrics(r metrics.Recorder) {
	f.metrics = r
}

// FetchAndDeliver sends the workflow event for runID and then, when enabled,
// one event per job in listing order. Lookup failures are returned as
// *provider.FetchError; delivery failures abort the run and are returned
// wrapped. The result reflects what was delivered before any failure.
func (f *Forwarder) FetchAndDeliver(ctx context.Context, repo provider.RepoRef, runID int64) (*Result, error) {
	result := &Result{RunID: runID}

	f.logger.Info("Fetching logs for run ID %d", runID)

	repository, err := f.provider.FetchRepository(ctx, repo)
	if err != nil {
		return result, &provider.FetchError{Op: "repository " + repo.String(), Err: err}
	}

	run, err := f.provider.FetchWorkflowRun(ctx, repo, runID)
	if err != nil {
		return result, &provider.FetchError{Op: fmt.Sprintf("workflow run %d", runID), Err: err}
	}

	pr, err := f.lookupPullRequest(ctx, repo, run)
	if err != nil {
		return result, err
	}

	if err := f.deliverer.Deliver(ctx, BuildWorkflowEvent(repository, run, pr, f.opts)); err != nil {
		return result, fmt.Errorf("workflow event for run %d: %w", runID, err)
	}
	result.EventsDelivered++
	f.logger.Info("Successfully sent workflow information to Splunk")

	if !f.opts.IncludeJobSteps {
		return result, nil
	}

	jobs, err := f.provider.FetchJobs(ctx, repo, runID)
	if err != nil {
		return result, &provider.FetchError{Op: fmt.Sprintf("jobs for run %d", runID), Err: err}
	}

	for _, job := range jobs {
		f.logger.Info("Fetching logs for job: %s (%d)", job.Name, job.ID)

		var logs *string
		if f.opts.IncludeJobLogs {
			content := f.jobLog(ctx, repo, job, result)
			logs = &content
		}

		if err := f.deliverer.Deliver(ctx, BuildJobEvent(repository, run, job, logs, f.opts)); err != nil {
			return result, fmt.Errorf("job %q of run %d: %w", job.Name, runID, err)
		}
		result.EventsDelivered++
		result.JobsDelivered++
		f.logger.Info("Successfully sent logs for job: %s", job.Name)
	}

	return result, nil
}

// lookupPullRequest returns nil when the head commit has no pull request, or
// when the lookup fails in lenient mode.
func (f *Forwarder) lookupPullRequest(ctx context.Context, repo provider.RepoRef, run *provider.WorkflowRun) (*provider.PullRequest, error) {
	if run.HeadSHA == "" {
		return nil, nil
	}

	pr, err := f.provider.FetchPullRequestForCommit(ctx, repo, run.HeadSHA)
	if err == nil {
		return pr, nil
	}

	if f.opts.StrictPullRequestLookup {
		return nil, &provider.FetchError{Op: "pull request for commit " + run.HeadSHA, Err: err}
	}
	f.logger.Info("Pull request lookup for %s failed, sending without pull request: %v", run.HeadSHA, err)
	return nil, nil
}

// jobLog never fails: errors become a placeholder string.
func (f *Forwarder) jobLog(ctx context.Context, repo provider.RepoRef, job provider.Job, result *Result) string {
	raw, err := f.provider.FetchJobLog(ctx, repo, job.ID)
	if err != nil {
		logErr := &provider.LogFetchError{JobID: job.ID, Err: err}
		f.logger.Debug("%v", logErr)
		result.LogFailures++
		f.metrics.LogFetchFailed()
		return LogPlaceholder(job.Name, err)
	}

	return sanitize.Truncate(sanitize.Clean(raw), f.opts.MaxLogBytes)
}

// Collector is a Deliverer that keeps events in memory instead of sending
// them. Used for previews.
type Collector struct {
	Events []contracts.Event
}

func (c *Collector) Deliver(ctx context.Context, event contracts.Event) error {
	c.Events = append(c.Events, event)
	return nil
}
