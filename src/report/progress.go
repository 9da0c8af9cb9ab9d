package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// StageComplete ends the progress display.
const StageComplete = "complete"

// ProgressMsg updates progress display
type ProgressMsg struct {
	Stage   string
	Current int
	Total   int
}

// ProgressModel shows a spinner next to the current batch stage.
type ProgressModel struct {
	spinner spinner.Model
	stage   string
	current int
	total   int
	done    bool
}

func NewProgressModel() ProgressModel {
	styles := DefaultStyles()
	return ProgressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Warning)),
		),
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.stage = msg.Stage
		m.current = msg.Current
		m.total = msg.Total
		if msg.Stage == StageComplete {
			m.done = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProgressModel) View() string {
	// The summary replaces the spinner line.
	if m.done {
		return ""
	}

	spin := m.spinner.View()
	switch {
	case m.total > 0:
		pct := float64(m.current) / float64(m.total) * 100
		return fmt.Sprintf("%s %s (%d/%d, %.0f%%)", spin, m.stage, m.current, m.total, pct)
	case m.stage != "":
		return fmt.Sprintf("%s %s...", spin, m.stage)
	default:
		return fmt.Sprintf("%s Loading...", spin)
	}
}

// Progress drives a ProgressModel while a batch runs. It doubles as the
// batch logger so log lines print above the spinner instead of through it.
type Progress struct {
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// StartProgress starts rendering to out. The display stops when ctx is done
// or Finish is called.
func StartProgress(ctx context.Context, out io.Writer) *Progress {
	p := &Progress{
		program: tea.NewProgram(NewProgressModel(),
			tea.WithContext(ctx),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
	return p
}

// RunStarted reports that the run at position current of total is being
// forwarded.
func (p *Progress) RunStarted(current, total int, runID int64) {
	p.program.Send(ProgressMsg{
		Stage:   fmt.Sprintf("Forwarding workflow run %d", runID),
		Current: current,
		Total:   total,
	})
}

// Finish clears the display and waits for the terminal to be released.
// Safe to call more than once and on a nil Progress.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.program.Send(ProgressMsg{Stage: StageComplete})
		<-p.done
	})
}

func (p *Progress) Info(msg string, args ...interface{}) {
	p.println("[INFO] " + fmt.Sprintf(msg, args...))
}

func (p *Progress) Error(msg string, args ...interface{}) {
	p.println("[ERROR] " + fmt.Sprintf(msg, args...))
}

// Debug is dropped; debug output is not drawn over the spinner.
func (p *Progress) Debug(msg string, args ...interface{}) {}

// println prints above the spinner. Program.Println blocks forever once the
// program has exited, so give up when it has.
func (p *Progress) println(line string) {
	printed := make(chan struct{})
	go func() {
		p.program.Println(line)
		close(printed)
	}()

	select {
	case <-printed:
	case <-p.done:
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
