package forwarder

import (
	"errors"
	"fmt"
	"time"

	"github-workflow-splunk-logger/src/contracts"
	"github-workflow-splunk-logger/src/provider"
)

// EffectiveStatus reports the conclusion once a run or job has finished and
// the lifecycle status before that.
func EffectiveStatus(status, conclusion string) string {
	if conclusion != "" {
		return conclusion
	}
	return status
}

// WorkflowSource is the source field of a workflow event.
func WorkflowSource(repo *provider.Repository, runName string) string {
	return fmt.Sprintf("github:%s/%s:workflow:%s", repo.Owner, repo.Name, runName)
}

// JobSource is the source field of a job event.
func JobSource(repo *provider.Repository, runName, jobName string) string {
	return WorkflowSource(repo, runName) + ":job:" + jobName
}

// JobSourceType derives the job sourcetype from the configured base.
func JobSourceType(base string) string {
	return base + ":job"
}

// LogPlaceholder stands in for a job log that could not be retrieved. Logs
// that no longer exist get the short form; other failures carry the error.
func LogPlaceholder(jobName string, err error) string {
	if err == nil || errors.Is(err, provider.ErrNotFound) {
		return "Logs unavailable for job: " + jobName
	}
	return fmt.Sprintf("Error fetching logs: %v", err)
}

// BuildWorkflowEvent shapes the workflow-level event. A nil pull request
// encodes as an empty object.
func BuildWorkflowEvent(repo *provider.Repository, run *provider.WorkflowRun, pr *provider.PullRequest, opts Options) contracts.Event {
	body := contracts.WorkflowEvent{
		Workflow: contracts.WorkflowInfo{
			ID:         run.ID,
			Name:       run.Name,
			RunNumber:  run.RunNumber,
			Event:      run.Event,
			HeadBranch: run.HeadBranch,
			HeadSHA:    run.HeadSHA,
			Status:     run.Status,
			Conclusion: run.Conclusion,
			CreatedAt:  formatTime(run.CreatedAt),
			UpdatedAt:  formatTime(run.UpdatedAt),
			URL:        run.URL,
			HTMLURL:    run.HTMLURL,
		},
		Repository: contracts.RepositoryInfo{
			Owner:    repo.Owner,
			Name:     repo.Name,
			FullName: repo.FullName,
		},
		PullRequest: pullRequestInfo(pr),
	}

	return contracts.Event{
		Body:       body,
		SourceType: opts.SourceType,
		Source:     WorkflowSource(repo, run.Name),
		Index:      opts.Index,
	}
}

// BuildJobEvent shapes a job-level event. logs is nil when log inclusion is
// disabled.
func BuildJobEvent(repo *provider.Repository, run *provider.WorkflowRun, job provider.Job, logs *string, opts Options) contracts.Event {
	body := contracts.JobEvent{
		JobID:          job.ID,
		JobName:        job.Name,
		JobStatus:      EffectiveStatus(job.Status, job.Conclusion),
		RawStatus:      job.Status,
		JobConclusion:  job.Conclusion,
		JobCreatedAt:   formatTime(job.CreatedAt),
		JobStartedAt:   formatTimePtr(job.StartedAt),
		JobCompletedAt: formatTimePtr(job.CompletedAt),
		JobHTMLURL:     job.HTMLURL,
		WorkflowName:   run.Name,
		WorkflowRunID:  run.ID,
		Logs:           logs,
	}

	return contracts.Event{
		Body:       body,
		SourceType: JobSourceType(opts.SourceType),
		Source:     JobSource(repo, run.Name, job.Name),
		Index:      opts.Index,
	}
}

func pullRequestInfo(pr *provider.PullRequest) contracts.PullRequestInfo {
	if pr == nil {
		return contracts.PullRequestInfo{}
	}

	return contracts.PullRequestInfo{
		Number:             pr.Number,
		Title:              pr.Title,
		State:              pr.State,
		CreatedAt:          formatTimePtr(pr.CreatedAt),
		UpdatedAt:          formatTimePtr(pr.UpdatedAt),
		ClosedAt:           formatTimePtr(pr.ClosedAt),
		MergedAt:           formatTimePtr(pr.MergedAt),
		MergeCommitSHA:     pr.MergeCommitSHA,
		Assignees:          pr.Assignees,
		RequestedReviewers: pr.RequestedReviewers,
		Labels:             pr.Labels,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
