package githubactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github-workflow-splunk-logger/src/provider"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint
	DefaultBaseURL = "https://api.github.com"

	defaultTimeout = 30 * time.Second
	jobsPerPage    = 100 // GitHub's max per page
)

// APIError is a non-success response from the GitHub API
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client is a GitHub Actions API client
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	limiter        *rate.Limiter
	baseURL        string
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a GitHub Enterprise API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithTimeout sets the per-request timeout for API calls and log downloads
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
			c.downloadClient.Timeout = timeout
		}
	}
}

// WithRateLimit caps API calls per second. Zero or negative means unlimited.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		}
	}
}

// NewClient creates a new GitHub Actions client
func NewClient(token string, opts ...Option) *Client {
	httpClient := &http.Client{}
	if token != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	httpClient.Timeout = defaultTimeout

	c := &Client{
		httpClient: httpClient,
		// Log archives are served from pre-signed storage URLs that reject
		// an Authorization header, so downloads use a plain client.
		downloadClient: &http.Client{Timeout: defaultTimeout},
		limiter:        rate.NewLimiter(rate.Inf, 0),
		baseURL:        DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRequest builds an API request once the rate limiter admits it
func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return req, nil
}

// getJSON performs a GET against the API and decodes a 200 response into out
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := c.newRequest(ctx, url)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// newAPIError reads the response body and classifies the status code
func newAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		apiErr.Err = provider.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		apiErr.Err = provider.ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Err = provider.ErrNotFound
	}
	return apiErr
}

// GetRepository fetches repository metadata
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)

	var repository Repository
	if err := c.getJSON(ctx, url, &repository); err != nil {
		return nil, err
	}
	return &repository, nil
}

// GetWorkflowRun fetches workflow run metadata
func (c *Client) GetWorkflowRun(ctx context.Context, owner, repo string, runID int64) (*WorkflowRun, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%d", c.baseURL, owner, repo, runID)

	var run WorkflowRun
	if err := c.getJSON(ctx, url, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetWorkflowJobs fetches jobs for a workflow run (handles pagination)
func (c *Client) GetWorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]WorkflowJob, error) {
	var allJobs []WorkflowJob
	page := 1

	for {
		url := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%d/jobs?per_page=%d&page=%d",
			c.baseURL, owner, repo, runID, jobsPerPage, page)

		var jobsResp WorkflowJobsResponse
		if err := c.getJSON(ctx, url, &jobsResp); err != nil {
			return nil, err
		}

		allJobs = append(allJobs, jobsResp.Jobs...)

		// Check if we've fetched all jobs
		if len(allJobs) >= jobsResp.TotalCount || len(jobsResp.Jobs) < jobsPerPage {
			break
		}

		page++
	}

	return allJobs, nil
}

// ListPullRequestsForCommit lists pull requests associated with a commit
func (c *Client) ListPullRequestsForCommit(ctx context.Context, owner, repo, sha string) ([]PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s/pulls", c.baseURL, owner, repo, sha)

	var pulls []PullRequest
	if err := c.getJSON(ctx, url, &pulls); err != nil {
		return nil, err
	}
	return pulls, nil
}

// GetJobLogs fetches the plain-text log of a job. The API answers with a
// redirect to a short-lived download URL.
func (c *Client) GetJobLogs(ctx context.Context, owner, repo string, jobID int64) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/jobs/%d/logs", c.baseURL, owner, repo, jobID)

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return "", err
	}

	// Don't follow redirects - we want the redirect URL
	client := &http.Client{
		Timeout:   c.httpClient.Timeout,
		Transport: c.httpClient.Transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		return string(body), nil
	case http.StatusFound, http.StatusMovedPermanently, http.StatusTemporaryRedirect:
	default:
		return "", newAPIError(resp)
	}

	logURL := resp.Header.Get("Location")
	if logURL == "" {
		return "", errors.New("no redirect location for logs")
	}

	logReq, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL, nil)
	if err != nil {
		return "", err
	}

	logResp, err := c.downloadClient.Do(logReq)
	if err != nil {
		return "", err
	}
	defer logResp.Body.Close()

	if logResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(logResp.Body)
		return "", fmt.Errorf("log download failed with status %d: %s", logResp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(logResp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
