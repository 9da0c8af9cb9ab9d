package githubactions

import (
	"context"
	"time"

	"github-workflow-splunk-logger/src/provider"
)

// Provider implements provider.Provider for GitHub Actions
type Provider struct {
	client *Client
}

// NewProvider creates a GitHub Actions provider with API token
func NewProvider(token string, opts ...Option) *Provider {
	return &Provider{
		client: NewClient(token, opts...),
	}
}

// Name returns "github"
func (p *Provider) Name() string {
	return "github"
}

// FetchRepository resolves owner, name and full name of the repository
func (p *Provider) FetchRepository(ctx context.Context, repo provider.RepoRef) (*provider.Repository, error) {
	r, err := p.client.GetRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}

	return &provider.Repository{
		Owner:    r.Owner.Login,
		Name:     r.Name,
		FullName: r.FullName,
	}, nil
}

// FetchWorkflowRun retrieves workflow run metadata using GitHub API
func (p *Provider) FetchWorkflowRun(ctx context.Context, repo provider.RepoRef, runID int64) (*provider.WorkflowRun, error) {
	run, err := p.client.GetWorkflowRun(ctx, repo.Owner, repo.Name, runID)
	if err != nil {
		return nil, err
	}

	return &provider.WorkflowRun{
		ID:         run.ID,
		Name:       run.Name,
		RunNumber:  run.RunNumber,
		Event:      run.Event,
		HeadBranch: run.HeadBranch,
		HeadSHA:    run.HeadSHA,
		Status:     run.Status,
		Conclusion: run.Conclusion,
		CreatedAt:  run.CreatedAt.UTC(),
		UpdatedAt:  run.UpdatedAt.UTC(),
		URL:        run.URL,
		HTMLURL:    run.HTMLURL,
	}, nil
}

// FetchPullRequestForCommit returns the first pull request associated with sha
func (p *Provider) FetchPullRequestForCommit(ctx context.Context, repo provider.RepoRef, sha string) (*provider.PullRequest, error) {
	pulls, err := p.client.ListPullRequestsForCommit(ctx, repo.Owner, repo.Name, sha)
	if err != nil {
		return nil, err
	}
	if len(pulls) == 0 {
		return nil, nil
	}

	pr := pulls[0]
	result := &provider.PullRequest{
		Number:         pr.Number,
		Title:          pr.Title,
		State:          pr.State,
		CreatedAt:      utc(pr.CreatedAt),
		UpdatedAt:      utc(pr.UpdatedAt),
		ClosedAt:       utc(pr.ClosedAt),
		MergedAt:       utc(pr.MergedAt),
		MergeCommitSHA: pr.MergeCommitSHA,
	}
	for _, u := range pr.Assignees {
		result.Assignees = append(result.Assignees, u.Login)
	}
	for _, u := range pr.RequestedReviewers {
		result.RequestedReviewers = append(result.RequestedReviewers, u.Login)
	}
	for _, l := range pr.Labels {
		result.Labels = append(result.Labels, l.Name)
	}

	return result, nil
}

// FetchJobs lists the jobs of a run in API order
func (p *Provider) FetchJobs(ctx context.Context, repo provider.RepoRef, runID int64) ([]provider.Job, error) {
	ghJobs, err := p.client.GetWorkflowJobs(ctx, repo.Owner, repo.Name, runID)
	if err != nil {
		return nil, err
	}

	jobs := make([]provider.Job, 0, len(ghJobs))
	for _, j := range ghJobs {
		jobs = append(jobs, provider.Job{
			ID:           j.ID,
			RunID:        j.RunID,
			Name:         j.Name,
			Status:       j.Status,
			Conclusion:   j.Conclusion,
			CreatedAt:    j.CreatedAt.UTC(),
			StartedAt:    utc(j.StartedAt),
			CompletedAt:  utc(j.CompletedAt),
			HTMLURL:      j.HTMLURL,
			WorkflowName: j.WorkflowName,
		})
	}

	return jobs, nil
}

// FetchJobLog retrieves raw log content for a job
func (p *Provider) FetchJobLog(ctx context.Context, repo provider.RepoRef, jobID int64) (string, error) {
	return p.client.GetJobLogs(ctx, repo.Owner, repo.Name, jobID)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
