package githubactions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github-workflow-splunk-logger/src/provider"
)

func TestClient_NewClient(t *testing.T) {
	client := NewClient("fake-token")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %s, want %s", client.baseURL, DefaultBaseURL)
	}

	client = NewClient("fake-token", WithBaseURL("https://ghe.example.com/api/v3/"), WithTimeout(5*time.Second))
	if client.baseURL != "https://ghe.example.com/api/v3" {
		t.Errorf("baseURL = %s, want trailing slash trimmed", client.baseURL)
	}
	if client.httpClient.Timeout != 5*time.Second || client.downloadClient.Timeout != 5*time.Second {
		t.Errorf("timeouts = %v/%v, want 5s", client.httpClient.Timeout, client.downloadClient.Timeout)
	}
}

func TestClient_GetWorkflowRun_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Accept") != "application/vnd.github+json" {
			t.Errorf("unexpected Accept header: %s", r.Header.Get("Accept"))
		}
		if r.URL.Path != "/repos/owner/repo/actions/runs/123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		// Return success response
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"id": 123,
			"name": "Test Run",
			"run_number": 7,
			"head_sha": "1ffe17be746af28a69c3e4d3919088fd2a125740",
			"status": "completed",
			"conclusion": "success",
			"created_at": "2024-01-01T12:00:00Z",
			"updated_at": "2024-01-01T12:30:00Z",
			"url": "https://api.github.com/repos/owner/repo/actions/runs/123",
			"html_url": "https://github.com/owner/repo/actions/runs/123"
		}`))
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	run, err := client.GetWorkflowRun(context.Background(), "owner", "repo", 123)
	if err != nil {
		t.Fatalf("GetWorkflowRun() error = %v", err)
	}

	if run.ID != 123 {
		t.Errorf("ID = %d, want 123", run.ID)
	}
	if run.Name != "Test Run" {
		t.Errorf("Name = %s, want Test Run", run.Name)
	}
	if run.HeadSHA != "1ffe17be746af28a69c3e4d3919088fd2a125740" {
		t.Errorf("HeadSHA = %s", run.HeadSHA)
	}
	if run.Conclusion != "success" {
		t.Errorf("Conclusion = %s, want success", run.Conclusion)
	}
	if !run.UpdatedAt.Equal(time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)) {
		t.Errorf("UpdatedAt = %v", run.UpdatedAt)
	}
}

func TestClient_GetWorkflowRun_InProgressHasNoConclusion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 5, "name": "CI", "status": "in_progress", "conclusion": null}`))
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	run, err := client.GetWorkflowRun(context.Background(), "owner", "repo", 5)
	if err != nil {
		t.Fatalf("GetWorkflowRun() error = %v", err)
	}
	if run.Conclusion != "" {
		t.Errorf("Conclusion = %q, want empty", run.Conclusion)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		header     map[string]string
		wantPrefix string
		wantErr    error
	}{
		{
			name:       "not found",
			status:     http.StatusNotFound,
			wantPrefix: "GitHub API error 404",
			wantErr:    provider.ErrNotFound,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			wantPrefix: "GitHub API error 401",
			wantErr:    provider.ErrAuthFailed,
		},
		{
			name:       "forbidden",
			status:     http.StatusForbidden,
			wantPrefix: "GitHub API error 403",
			wantErr:    provider.ErrAuthFailed,
		},
		{
			name:       "primary rate limit",
			status:     http.StatusForbidden,
			header:     map[string]string{"X-RateLimit-Remaining": "0"},
			wantPrefix: "GitHub API error 403",
			wantErr:    provider.ErrRateLimited,
		},
		{
			name:       "secondary rate limit",
			status:     http.StatusTooManyRequests,
			wantPrefix: "GitHub API error 429",
			wantErr:    provider.ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message": "nope"}`))
			}))
			defer server.Close()

			client := NewClient("test-token")
			client.baseURL = server.URL

			_, err := client.GetWorkflowRun(context.Background(), "owner", "repo", 999)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.HasPrefix(err.Error(), tt.wantPrefix) {
				t.Errorf("error = %v, want to start with %s", err, tt.wantPrefix)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("errors.Is(err, %v) = false", tt.wantErr)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("error = %#v, want *APIError with status %d", err, tt.status)
			}
		})
	}
}

func TestClient_GetWorkflowJobs_Pagination(t *testing.T) {
	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/actions/runs/1/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("per_page = %s, want 100", r.URL.Query().Get("per_page"))
		}
		pages++

		page := r.URL.Query().Get("page")
		count := 100
		offset := 0
		if page == "2" {
			count = 20
			offset = 100
		}

		var jobs []string
		for i := 0; i < count; i++ {
			jobs = append(jobs, fmt.Sprintf(`{"id": %d, "name": "job-%d", "status": "completed"}`, offset+i, offset+i))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"total_count": 120, "jobs": [%s]}`, strings.Join(jobs, ","))
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	jobs, err := client.GetWorkflowJobs(context.Background(), "owner", "repo", 1)
	if err != nil {
		t.Fatalf("GetWorkflowJobs() error = %v", err)
	}
	if len(jobs) != 120 {
		t.Errorf("len(jobs) = %d, want 120", len(jobs))
	}
	if pages != 2 {
		t.Errorf("pages fetched = %d, want 2", pages)
	}
	if jobs[0].Name != "job-0" || jobs[119].Name != "job-119" {
		t.Errorf("jobs out of order: first=%s last=%s", jobs[0].Name, jobs[119].Name)
	}
}

func TestClient_ListPullRequestsForCommit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/commits/abc123/pulls" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"number": 123,
			"title": "TEST-123: Create Feature A",
			"state": "open",
			"created_at": "2025-03-03T13:54:00Z",
			"merged_at": null,
			"assignees": [{"login": "user1"}],
			"requested_reviewers": [{"login": "user2"}, {"login": "user3"}],
			"labels": [{"name": "run-full-validation"}]
		}]`))
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	pulls, err := client.ListPullRequestsForCommit(context.Background(), "owner", "repo", "abc123")
	if err != nil {
		t.Fatalf("ListPullRequestsForCommit() error = %v", err)
	}
	if len(pulls) != 1 {
		t.Fatalf("len(pulls) = %d, want 1", len(pulls))
	}
	if pulls[0].Number != 123 || pulls[0].MergedAt != nil {
		t.Errorf("pull = %+v", pulls[0])
	}
	if len(pulls[0].RequestedReviewers) != 2 {
		t.Errorf("requested reviewers = %+v", pulls[0].RequestedReviewers)
	}
}

func TestClient_GetJobLogs_FollowsRedirectWithoutAuth(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/repo/actions/jobs/42/logs":
			if r.Header.Get("Authorization") != "Bearer test-token" {
				t.Errorf("logs endpoint Authorization = %q", r.Header.Get("Authorization"))
			}
			w.Header().Set("Location", server.URL+"/download/42.txt")
			w.WriteHeader(http.StatusFound)
		case "/download/42.txt":
			if auth := r.Header.Get("Authorization"); auth != "" {
				t.Errorf("download must not carry Authorization, got %q", auth)
			}
			w.Write([]byte("2024-01-01T12:00:00Z Run tests\nok\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	logs, err := client.GetJobLogs(context.Background(), "owner", "repo", 42)
	if err != nil {
		t.Fatalf("GetJobLogs() error = %v", err)
	}
	if !strings.Contains(logs, "Run tests") {
		t.Errorf("logs = %q", logs)
	}
}

func TestClient_GetJobLogs_Errors(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/repo/actions/jobs/1/logs":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Not Found"}`))
		case "/repos/owner/repo/actions/jobs/2/logs":
			w.WriteHeader(http.StatusFound)
		case "/repos/owner/repo/actions/jobs/3/logs":
			w.Header().Set("Location", server.URL+"/expired")
			w.WriteHeader(http.StatusFound)
		case "/expired":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("AuthenticationFailed"))
		}
	}))
	defer server.Close()

	client := NewClient("test-token")
	client.baseURL = server.URL

	tests := []struct {
		jobID   int64
		wantErr string
	}{
		{jobID: 1, wantErr: "GitHub API error 404"},
		{jobID: 2, wantErr: "no redirect location"},
		{jobID: 3, wantErr: "log download failed with status 403"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("job %d", tt.jobID), func(t *testing.T) {
			_, err := client.GetJobLogs(context.Background(), "owner", "repo", tt.jobID)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	client := NewClient("test-token", WithRateLimit(0.001))
	client.baseURL = "http://127.0.0.1:0"

	// The first call consumes the single burst token and fails to connect.
	_, _ = client.GetRepository(context.Background(), "owner", "repo")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetRepository(ctx, "owner", "repo")
	if err == nil {
		t.Fatal("expected limiter error, got nil")
	}
}
