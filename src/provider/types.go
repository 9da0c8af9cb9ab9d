package provider

import "time"

// RepoRef identifies a repository on the hosting service.
type RepoRef struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// Repository is the resolved repository.
type Repository struct {
	Owner    string
	Name     string
	FullName string
}

// WorkflowRun is an immutable snapshot of one workflow run.
type WorkflowRun struct {
	ID         int64
	Name       string
	RunNumber  int
	Event      string
	HeadBranch string
	HeadSHA    string
	Status     string
	Conclusion string // empty while the run is in progress
	CreatedAt  time.Time
	UpdatedAt  time.Time
	URL        string
	HTMLURL    string
}

// Job is a unit of work within a workflow run.
type Job struct {
	ID           int64
	RunID        int64
	Name         string
	Status       string
	Conclusion   string
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time // nil while the job is running
	HTMLURL      string
	WorkflowName string
}

// PullRequest is the pull request associated with a commit.
type PullRequest struct {
	Number             int
	Title              string
	State              string
	CreatedAt          *time.Time
	UpdatedAt          *time.Time
	ClosedAt           *time.Time
	MergedAt           *time.Time
	MergeCommitSHA     string
	Assignees          []string
	RequestedReviewers []string
	Labels             []string
}
