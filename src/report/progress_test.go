package report

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"
)

func update(t *testing.T, m ProgressModel, msg interface{}) ProgressModel {
	t.Helper()
	next, _ := m.Update(msg)
	pm, ok := next.(ProgressModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return pm
}

func TestProgressModel_InitialState(t *testing.T) {
	model := NewProgressModel()

	if model.stage != "" {
		t.Errorf("expected empty stage, got %s", model.stage)
	}
	if model.done {
		t.Error("expected not done initially")
	}
	if !strings.Contains(model.View(), "Loading...") {
		t.Errorf("view = %q", model.View())
	}
	if model.Init() == nil {
		t.Error("expected Init to start the spinner")
	}
}

func TestProgressModel_UpdateWithStage(t *testing.T) {
	model := update(t, NewProgressModel(), ProgressMsg{Stage: "Opening queue"})

	if model.stage != "Opening queue" {
		t.Errorf("expected stage 'Opening queue', got %s", model.stage)
	}
	if view := model.View(); !strings.Contains(view, "Opening queue...") {
		t.Errorf("expected view to contain stage, got: %s", view)
	}
}

func TestProgressModel_UpdateWithProgress(t *testing.T) {
	model := update(t, NewProgressModel(), ProgressMsg{
		Stage:   "Forwarding workflow run 42",
		Current: 3,
		Total:   5,
	})

	view := ansi.Strip(model.View())
	for _, want := range []string{"Forwarding workflow run 42", "3/5", "60%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got: %s", want, view)
		}
	}
}

func TestProgressModel_Complete(t *testing.T) {
	next, cmd := NewProgressModel().Update(ProgressMsg{Stage: StageComplete})
	model := next.(ProgressModel)

	if !model.done {
		t.Error("expected model to be done after complete stage")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if model.View() != "" {
		t.Errorf("expected empty view once done, got %q", model.View())
	}

	// Ticks after completion do not restart the spinner
	if _, cmd := model.Update(spinner.TickMsg{}); cmd != nil {
		t.Error("expected no tick command once done")
	}
}

func TestProgressModel_SpinnerTick(t *testing.T) {
	model := NewProgressModel()
	before := model.View()

	next, cmd := model.Update(model.spinner.Tick())
	if cmd == nil {
		t.Error("expected the spinner to schedule its next frame")
	}
	if next.(ProgressModel).View() == before {
		t.Error("expected the spinner frame to advance")
	}
}

func TestProgress_PrintsLogLinesAndFinishes(t *testing.T) {
	var out bytes.Buffer
	p := StartProgress(context.Background(), &out)

	p.Info("Processing Workflow Run ID: %d", 1)
	p.RunStarted(0, 2, 1)
	p.Error("Workflow Run ID %d failed: %s", 2, "boom")
	p.Debug("not shown")

	finished := make(chan struct{})
	go func() {
		p.Finish()
		p.Finish()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Finish did not return")
	}

	got := ansi.Strip(out.String())
	for _, want := range []string{"[INFO] Processing Workflow Run ID: 1", "[ERROR] Workflow Run ID 2 failed: boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "not shown") {
		t.Errorf("debug line should be dropped:\n%s", got)
	}
}

func TestProgress_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	p := StartProgress(ctx, &out)
	cancel()

	done := make(chan struct{})
	go func() {
		// Logging after the display stopped must not block
		p.Info("late line")
		p.Finish()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Progress blocked after its context was cancelled")
	}
}

func TestProgress_NilFinish(t *testing.T) {
	var p *Progress
	p.Finish()
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("CreateTemp failed: %v", err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}
