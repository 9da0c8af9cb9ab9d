package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github-workflow-splunk-logger/src/forwarder"
	"github-workflow-splunk-logger/src/pipeline"
)

const (
	labelWidth    = 12
	maxErrorWidth = 96
)

// Summary renders outcomes with a palette.
type Summary struct {
	styles *StyleConfig
}

// NewSummary creates a renderer with the default palette.
func NewSummary() *Summary {
	return &Summary{styles: DefaultStyles()}
}

func (s *Summary) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.styles.LabelStyle().Render(label), value)
}

func (s *Summary) repoRow(repo string) string {
	return s.row("repository", lipgloss.NewStyle().Foreground(s.styles.PrimaryBlue).Render(repo))
}

// Run renders the outcome of a single workflow run.
func (s *Summary) Run(repo string, result *forwarder.Result, preview bool) string {
	verb := "forwarded"
	if preview {
		verb = "previewed"
	}

	rows := []string{
		s.styles.TitleStyle(true).Render(fmt.Sprintf("Workflow run %d %s", result.RunID, verb)),
		s.repoRow(repo),
		s.row("events", fmt.Sprintf("%d (%d jobs)", result.EventsDelivered, result.JobsDelivered)),
	}
	if result.LogFailures > 0 {
		warn := lipgloss.NewStyle().Foreground(s.styles.Warning)
		rows = append(rows, s.row("log errors", warn.Render(fmt.Sprintf("%d", result.LogFailures))))
	}

	return s.styles.BoxStyle().Render(strings.Join(rows, "\n"))
}

// Batch renders the outcome of a batch.
func (s *Summary) Batch(repo string, report *pipeline.BatchReport) string {
	ok := len(report.Failed) == 0

	title := fmt.Sprintf("Batch complete: %d run(s) processed", len(report.Processed))
	if !ok {
		title = fmt.Sprintf("Batch incomplete: %d processed, %d failed", len(report.Processed), len(report.Failed))
	}

	rows := []string{
		s.styles.TitleStyle(ok).Render(title),
		s.repoRow(repo),
		s.row("events", fmt.Sprintf("%d", report.EventsDelivered())),
	}

	fail := lipgloss.NewStyle().Foreground(s.styles.Failure)
	for _, f := range report.Failed {
		msg := Truncate(FirstLine(f.Err.Error()), maxErrorWidth, true)
		rows = append(rows, s.row(fmt.Sprintf("run %d", f.RunID), fail.Render(msg)))
	}

	return s.styles.BoxStyle().Render(strings.Join(rows, "\n"))
}
