package forwarder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github-workflow-splunk-logger/src/contracts"
	"github-workflow-splunk-logger/src/hec"
	"github-workflow-splunk-logger/src/provider"
)

// fakeProvider serves a fixed run and counts calls.
type fakeProvider struct {
	repo    *provider.Repository
	run     *provider.WorkflowRun
	pr      *provider.PullRequest
	jobs    []provider.Job
	logs    map[int64]string
	logErrs map[int64]error

	repoErr error
	runErr  error
	prErr   error
	jobsErr error

	jobsCalls int
	logCalls  int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchRepository(ctx context.Context, repo provider.RepoRef) (*provider.Repository, error) {
	return f.repo, f.repoErr
}

func (f *fakeProvider) FetchWorkflowRun(ctx context.Context, repo provider.RepoRef, runID int64) (*provider.WorkflowRun, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.run, nil
}

func (f *fakeProvider) FetchPullRequestForCommit(ctx context.Context, repo provider.RepoRef, sha string) (*provider.PullRequest, error) {
	return f.pr, f.prErr
}

func (f *fakeProvider) FetchJobs(ctx context.Context, repo provider.RepoRef, runID int64) ([]provider.Job, error) {
	f.jobsCalls++
	return f.jobs, f.jobsErr
}

func (f *fakeProvider) FetchJobLog(ctx context.Context, repo provider.RepoRef, jobID int64) (string, error) {
	f.logCalls++
	if err := f.logErrs[jobID]; err != nil {
		return "", err
	}
	return f.logs[jobID], nil
}

// failingDeliverer fails on the nth call (1-indexed).
type failingDeliverer struct {
	Collector
	failOn int
	calls  int
}

func (d *failingDeliverer) Deliver(ctx context.Context, event contracts.Event) error {
	d.calls++
	if d.calls == d.failOn {
		return &hec.DeliveryError{Endpoint: "http://splunk/services/collector", Attempts: 3, StatusCode: 503, Body: "busy"}
	}
	return d.Collector.Deliver(ctx, event)
}

func newFakeProvider() *fakeProvider {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	completed := created.Add(5 * time.Minute)

	return &fakeProvider{
		repo: &provider.Repository{Owner: "owner", Name: "repo", FullName: "owner/repo"},
		run: &provider.WorkflowRun{
			ID:         12345,
			Name:       "CI",
			RunNumber:  7,
			HeadSHA:    "abc123",
			Status:     "completed",
			Conclusion: "success",
			CreatedAt:  created,
			UpdatedAt:  completed,
			URL:        "https://api.github.com/repos/owner/repo/actions/runs/12345",
			HTMLURL:    "https://github.com/owner/repo/actions/runs/12345",
		},
		pr: &provider.PullRequest{Number: 123, Title: "Add feature", State: "open", CreatedAt: &created},
		jobs: []provider.Job{
			{ID: 1, Name: "build", Status: "completed", Conclusion: "success", CreatedAt: created, CompletedAt: &completed},
			{ID: 2, Name: "test", Status: "in_progress", CreatedAt: created},
		},
		logs: map[int64]string{
			1: "\x1b[32mbuild ok\x1b[0m\r\n",
			2: "running tests\n",
		},
		logErrs: map[int64]error{},
	}
}

var ref = provider.RepoRef{Owner: "owner", Name: "repo"}

func TestFetchAndDeliver_EndToEnd(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var envelope map[string]any
		if err := json.Unmarshal(raw, &envelope); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		bodies = append(bodies, envelope)
		mu.Unlock()
		w.Write([]byte(`{"text":"Success","code":0}`))
	}))
	defer srv.Close()

	cfg := hec.DefaultConfig()
	cfg.URL = srv.URL
	cfg.Token = "token"
	sender := hec.NewSender(cfg)

	fp := newFakeProvider()
	result, err := New(fp, sender, DefaultOptions(), nil).FetchAndDeliver(context.Background(), ref, 12345)
	if err != nil {
		t.Fatalf("FetchAndDeliver failed: %v", err)
	}

	want := Result{RunID: 12345, EventsDelivered: 3, JobsDelivered: 2}
	if *result != want {
		t.Errorf("result = %+v, want %+v", *result, want)
	}
	if len(bodies) != 3 {
		t.Fatalf("collector received %d events, want 3", len(bodies))
	}

	workflow := bodies[0]["event"].(map[string]any)
	type check struct {
		name string
		got  any
		want any
	}
	checks := []check{
		{"full_name", workflow["repository"].(map[string]any)["full_name"], "owner/repo"},
		{"pr number", workflow["pull_request"].(map[string]any)["number"], 123.0},
		{"sourcetype", bodies[0]["sourcetype"], "github:workflow:logs"},
		{"source", bodies[0]["source"], "github:owner/repo:workflow:CI"},
		{"index", bodies[0]["index"], "github_workflows"},
	}
	for i, name := range []string{"build", "test"} {
		job := bodies[i+1]["event"].(map[string]any)
		checks = append(checks,
			check{name + " job_name", job["job_name"], name},
			check{name + " workflow_run_id", job["workflow_run_id"], 12345.0},
			check{name + " sourcetype", bodies[i+1]["sourcetype"], "github:workflow:logs:job"},
			check{name + " source", bodies[i+1]["source"], "github:owner/repo:workflow:CI:job:" + name},
		)
	}

	build := bodies[1]["event"].(map[string]any)
	test := bodies[2]["event"].(map[string]any)
	checks = append(checks,
		check{"build job_status", build["job_status"], "success"},
		check{"build job.status", build["job.status"], "completed"},
		check{"build logs", build["logs"], "build ok"},
		check{"build job_completed_at", build["job_completed_at"], "2024-01-01T12:05:00Z"},
		check{"test job_status", test["job_status"], "in_progress"},
	)

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if _, ok := test["job_completed_at"]; ok {
		t.Error("running job should have no job_completed_at")
	}
}

func TestFetchAndDeliver_NoPullRequest(t *testing.T) {
	fp := newFakeProvider()
	fp.pr = nil

	c := &Collector{}
	if _, err := New(fp, c, DefaultOptions(), nil).FetchAndDeliver(context.Background(), ref, 12345); err != nil {
		t.Fatalf("FetchAndDeliver failed: %v", err)
	}

	raw, err := json.Marshal(c.Events[0])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"pull_request":{}`) {
		t.Errorf("workflow event = %s", raw)
	}
}

func TestFetchAndDeliver_PullRequestLookupFailure(t *testing.T) {
	t.Run("lenient", func(t *testing.T) {
		fp := newFakeProvider()
		fp.prErr = provider.ErrRateLimited

		c := &Collector{}
		result, err := New(fp, c, DefaultOptions(), nil).FetchAndDeliver(context.Background(), ref, 12345)
		if err != nil {
			t.Fatalf("FetchAndDeliver failed: %v", err)
		}
		if result.EventsDelivered != 3 {
			t.Errorf("EventsDelivered = %d, want 3", result.EventsDelivered)
		}
		if pr := c.Events[0].Body.(contracts.WorkflowEvent).PullRequest; pr.Number != 0 {
			t.Errorf("expected no pull request, got %+v", pr)
		}
	})

	t.Run("strict", func(t *testing.T) {
		fp := newFakeProvider()
		fp.prErr = provider.ErrRateLimited

		opts := DefaultOptions()
		opts.StrictPullRequestLookup = true

		c := &Collector{}
		_, err := New(fp, c, opts, nil).FetchAndDeliver(context.Background(), ref, 12345)

		var fetchErr *provider.FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected FetchError, got %v", err)
		}
		if !errors.Is(err, provider.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
		if len(c.Events) != 0 {
			t.Errorf("delivered %d events, want 0", len(c.Events))
		}
	})
}

func TestFetchAndDeliver_WithoutJobSteps(t *testing.T) {
	fp := newFakeProvider()
	opts := DefaultOptions()
	opts.IncludeJobSteps = false

	c := &Collector{}
	result, err := New(fp, c, opts, nil).FetchAndDeliver(context.Background(), ref, 12345)
	if err != nil {
		t.Fatalf("FetchAndDeliver failed: %v", err)
	}

	if len(c.Events) != 1 || result.EventsDelivered != 1 {
		t.Errorf("delivered %d events (result %d), want 1", len(c.Events), result.EventsDelivered)
	}
	if fp.jobsCalls != 0 {
		t.Errorf("jobs fetched %d times, want 0", fp.jobsCalls)
	}
}

func TestFetchAndDeliver_WithoutJobLogs(t *testing.T) {
	fp := newFakeProvider()
	opts := DefaultOptions()
	opts.IncludeJobLogs = false

	c := &Collector{}
	if _, err := New(fp, c, opts, nil).FetchAndDeliver(context.Background(), ref, 12345); err != nil {
		t.Fatalf("FetchAndDeliver failed: %v", err)
	}

	if fp.logCalls != 0 {
		t.Errorf("logs fetched %d times, want 0", fp.logCalls)
	}
	raw, err := json.Marshal(c.Events[1])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(raw), `"logs"`) {
		t.Errorf("job event should have no logs: %s", raw)
	}
}

func TestFetchAndDeliver_LogFailureUsesPlaceholder(t *testing.T) {
	fp := newFakeProvider()
	fp.logErrs[1] = errors.New("connection reset by peer")
	fp.logErrs[2] = provider.ErrNotFound

	c := &Collector{}
	result, err := New(fp, c, DefaultOptions(), nil).FetchAndDeliver(context.Background(), ref, 12345)
	if err != nil {
		t.Fatalf("FetchAndDeliver failed: %v", err)
	}

	if result.LogFailures != 2 {
		t.Errorf("LogFailures = %d, want 2", result.LogFailures)
	}
	if len(c.Events) != 3 {
		t.Fatalf("delivered %d events, want 3", len(c.Events))
	}
	if got := *c.Events[1].Body.(contracts.JobEvent).Logs; got != "Error fetching logs: connection reset by peer" {
		t.Errorf("build logs = %q", got)
	}
	if got := *c.Events[2].Body.(contracts.JobEvent).Logs; got != "Logs unavailable for job: test" {
		t.Errorf("test logs = %q", got)
	}
}

func TestFetchAndDeliver_TruncatesLogs(t *testing.T) {
	fp := newFakeProvider()
	fp.logs[1] = strings.Repeat("a", 500)

	opts := DefaultOptions()
	opts.MaxLogBytes = 100

	c := &Collector{}
	if _, err := New(fp, c, opts, nil).FetchAndDeliver(context.Background(), ref, 12345); err != nil {
		t.Fatalf("FetchAndDeliver failed: %v", err)
	}

	logs := *c.Events[1].Body.(contracts.JobEvent).Logs
	want := strings.Repeat("a", 74) + "\n... [truncated 426 bytes]"
	if logs != want {
		t.Errorf("logs = %q, want %q", logs, want)
	}
}

func TestFetchAndDeliver_FetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeProvider)
		wantOp string
	}{
		{name: "repository", mutate: func(f *fakeProvider) { f.repoErr = provider.ErrNotFound }, wantOp: "repository owner/repo"},
		{name: "run", mutate: func(f *fakeProvider) { f.runErr = provider.ErrNotFound }, wantOp: "workflow run 12345"},
		{name: "jobs", mutate: func(f *fakeProvider) { f.jobsErr = provider.ErrAuthFailed }, wantOp: "jobs for run 12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProvider()
			tt.mutate(fp)

			_, err := New(fp, &Collector{}, DefaultOptions(), nil).FetchAndDeliver(context.Background(), ref, 12345)

			var fetchErr *provider.FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fetchErr.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", fetchErr.Op, tt.wantOp)
			}
		})
	}
}

func TestFetchAndDeliver_DeliveryFailureIsFatal(t *testing.T) {
	t.Run("workflow event", func(t *testing.T) {
		fp := newFakeProvider()
		d := &failingDeliverer{failOn: 1}

		result, err := New(fp, d, DefaultOptions(), nil).FetchAndDeliver(context.Background(), ref, 12345)

		var delErr *hec.DeliveryError
		if !errors.As(err, &delErr) {
			t.Fatalf("expected DeliveryError, got %v", err)
		}
		if fp.jobsCalls != 0 {
			t.Errorf("jobs fetched %d times after a failed workflow event", fp.jobsCalls)
		}
		if result.EventsDelivered != 0 {
			t.Errorf("EventsDelivered = %d, want 0", result.EventsDelivered)
		}
	})

	t.Run("first job", func(t *testing.T) {
		fp := newFakeProvider()
		d := &failingDeliverer{failOn: 2}

		result, err := New(fp, d, DefaultOptions(), nil).FetchAndDeliver(context.Background(), ref, 12345)

		var delErr *hec.DeliveryError
		if !errors.As(err, &delErr) {
			t.Fatalf("expected DeliveryError, got %v", err)
		}
		if !strings.Contains(err.Error(), `job "build"`) {
			t.Errorf("error = %v", err)
		}
		if d.calls != 2 {
			t.Errorf("deliveries = %d, want 2 (second job must not be attempted)", d.calls)
		}
		if result.EventsDelivered != 1 {
			t.Errorf("EventsDelivered = %d, want 1", result.EventsDelivered)
		}
	})
}
