package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/pipeline"
)

func plain(s string) string {
	return ansi.Strip(s)
}

func TestSummary_Run(t *testing.T) {
	out := plain(NewSummary().Run("acme/widgets", &forwarder.Result{
		RunID: 42, EventsDelivered: 4, JobsDelivered: 3, LogFailures: 1,
	}, false))

	for _, want := range []string{"Workflow run 42 forwarded", "acme/widgets", "4 (3 jobs)", "log errors"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummary_RunPreview(t *testing.T) {
	out := plain(NewSummary().Run("acme/widgets", &forwarder.Result{RunID: 1, EventsDelivered: 1}, true))

	if !strings.Contains(out, "Workflow run 1 previewed") {
		t.Errorf("summary = %s", out)
	}
	if strings.Contains(out, "log errors") {
		t.Errorf("log errors row should be omitted:\n%s", out)
	}
}

func TestSummary_Batch(t *testing.T) {
	report := &pipeline.BatchReport{
		Processed: []forwarder.Result{{RunID: 1, EventsDelivered: 2}, {RunID: 2, EventsDelivered: 3}},
		Failed: []pipeline.RunFailure{
			{RunID: 3, Err: errors.New("Authentication failed\n\nHint: check the token")},
		},
	}

	out := plain(NewSummary().Batch("acme/widgets", report))

	for _, want := range []string{"Batch incomplete: 2 processed, 1 failed", "run 3", "Authentication failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Hint") {
		t.Errorf("only the first line of an error is shown:\n%s", out)
	}
}

func TestSummary_BatchComplete(t *testing.T) {
	out := plain(NewSummary().Batch("acme/widgets", &pipeline.BatchReport{}))
	if !strings.Contains(out, "Batch complete: 0 run(s) processed") {
		t.Errorf("summary = %s", out)
	}
}
