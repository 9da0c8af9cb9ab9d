package contracts

import "encoding/json"

// Event is the HEC envelope handed to the collector. Body is serialized under
// the "event" key; the routing fields sit next to it.
type Event struct {
	Body       any    `json:"event"`
	SourceType string `json:"sourcetype"`
	Source     string `json:"source"`
	Index      string `json:"index,omitempty"`
}

// WorkflowEvent is the body of the workflow-level event.
type WorkflowEvent struct {
	Workflow    WorkflowInfo    `json:"workflow"`
	Repository  RepositoryInfo  `json:"repository"`
	PullRequest PullRequestInfo `json:"pull_request"`
}

// WorkflowInfo mirrors the fields of a workflow run.
type WorkflowInfo struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	RunNumber  int    `json:"run_number,omitempty"`
	Event      string `json:"event,omitempty"`
	HeadBranch string `json:"head_branch,omitempty"`
	HeadSHA    string `json:"head_sha,omitempty"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	URL        string `json:"url"`
	HTMLURL    string `json:"html_url"`
}

// RepositoryInfo identifies the repository owning the run.
type RepositoryInfo struct {
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// PullRequestInfo describes the pull request associated with the head commit.
// A run without a pull request carries the zero value, which encodes as {}.
// A present pull request always carries its list fields, empty or not.
type PullRequestInfo struct {
	Number             int      `json:"number,omitempty"`
	Title              string   `json:"title,omitempty"`
	State              string   `json:"state,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
	ClosedAt           string   `json:"closed_at,omitempty"`
	MergedAt           string   `json:"merged_at,omitempty"`
	MergeCommitSHA     string   `json:"merge_commit_sha,omitempty"`
	Assignees          []string `json:"assignees"`
	RequestedReviewers []string `json:"requested_reviewers"`
	Labels             []string `json:"labels"`
}

// MarshalJSON implements json.Marshaler.
func (p PullRequestInfo) MarshalJSON() ([]byte, error) {
	if p.Number == 0 {
		return []byte("{}"), nil
	}

	type plain PullRequestInfo
	out := plain(p)
	out.Assignees = nonNil(out.Assignees)
	out.RequestedReviewers = nonNil(out.RequestedReviewers)
	out.Labels = nonNil(out.Labels)
	return json.Marshal(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// JobEvent is the body of a job-level event.
type JobEvent struct {
	JobID          int64   `json:"job_id"`
	JobName        string  `json:"job_name"`
	JobStatus      string  `json:"job_status"`
	RawStatus      string  `json:"job.status"`
	JobConclusion  string  `json:"job_conclusion,omitempty"`
	JobCreatedAt   string  `json:"job_created_at,omitempty"`
	JobStartedAt   string  `json:"job_started_at,omitempty"`
	JobCompletedAt string  `json:"job_completed_at,omitempty"`
	JobHTMLURL     string  `json:"job_html_url,omitempty"`
	WorkflowName   string  `json:"workflow_name"`
	WorkflowRunID  int64   `json:"workflow_run_id"`
	Logs           *string `json:"logs,omitempty"`
}
