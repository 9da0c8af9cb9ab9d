package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidURL        = errors.New("invalid workflow run URL")
	ErrInvalidRepository = errors.New("invalid repository, expected owner/name")
)

// Provider defines the read operations the fetcher needs from a source-control host.
type Provider interface {
	// Name returns the provider name (e.g., "github")
	Name() string

	// FetchRepository resolves the repository owning the runs
	FetchRepository(ctx context.Context, repo RepoRef) (*Repository, error)

	// FetchWorkflowRun retrieves a workflow run by numeric ID
	FetchWorkflowRun(ctx context.Context, repo RepoRef, runID int64) (*WorkflowRun, error)

	// FetchPullRequestForCommit returns the first pull request associated with
	// the commit, or nil when there is none
	FetchPullRequestForCommit(ctx context.Context, repo RepoRef, sha string) (*PullRequest, error)

	// FetchJobs lists every job of a run in listing order
	FetchJobs(ctx context.Context, repo RepoRef, runID int64) ([]Job, error)

	// FetchJobLog retrieves raw log content for a job
	FetchJobLog(ctx context.Context, repo RepoRef, jobID int64) (string, error)
}

var (
	repositoryPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
	runURLPattern     = regexp.MustCompile(`^https://[^/]+/([^/]+)/([^/]+)/actions/runs/(\d+)`)
)

// ParseRepository parses an "owner/name" identifier.
func ParseRepository(s string) (RepoRef, error) {
	matches := repositoryPattern.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidRepository, s)
	}
	return RepoRef{Owner: matches[1], Name: matches[2]}, nil
}

// ParseRunURL extracts the repository and run ID from a workflow run URL
// such as https://github.com/owner/repo/actions/runs/123.
func ParseRunURL(url string) (RepoRef, int64, error) {
	matches := runURLPattern.FindStringSubmatch(url)
	if matches == nil {
		return RepoRef{}, 0, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	runID, err := strconv.ParseInt(matches[3], 10, 64)
	if err != nil {
		return RepoRef{}, 0, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	return RepoRef{Owner: matches[1], Name: matches[2]}, runID, nil
}
