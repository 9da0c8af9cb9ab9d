package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, GitHub Actions, structured, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// Log formats accepted by New.
const (
	FormatConsole = "console"
	FormatActions = "actions"
	FormatJSON    = "json"
)

// New returns the logger for the given format. Debug messages are dropped
// unless debug is set, except in actions format where the runner filters them.
func New(format string, debug bool) (Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatConsole:
		return NewConsoleLogger(debug), nil
	case FormatActions:
		return NewActionsLogger(os.Stdout), nil
	case FormatJSON:
		return NewStructuredLogger(os.Stderr, debug), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want console, actions or json)", format)
	}
}

// ConsoleLogger writes human-readable logs to stdout/stderr.
// Used for normal operation and debugging.
type ConsoleLogger struct {
	out    io.Writer
	errOut io.Writer
	debug  bool
}

func NewConsoleLogger(debug bool) *ConsoleLogger {
	return &ConsoleLogger{out: os.Stdout, errOut: os.Stderr, debug: debug}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	fmt.Fprintf(c.out, "[INFO] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(c.errOut, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if !c.debug {
		return
	}
	fmt.Fprintf(c.out, "[DEBUG] "+msg+"\n", args...)
}

// ActionsLogger emits GitHub Actions workflow commands so errors surface as
// annotations and debug lines follow the runner's step-debug setting.
type ActionsLogger struct {
	out io.Writer
}

func NewActionsLogger(out io.Writer) *ActionsLogger {
	return &ActionsLogger{out: out}
}

func (a *ActionsLogger) Info(msg string, args ...interface{}) {
	fmt.Fprintln(a.out, fmt.Sprintf(msg, args...))
}

func (a *ActionsLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(a.out, "::error::%s\n", escapeCommandData(fmt.Sprintf(msg, args...)))
}

func (a *ActionsLogger) Debug(msg string, args ...interface{}) {
	fmt.Fprintf(a.out, "::debug::%s\n", escapeCommandData(fmt.Sprintf(msg, args...)))
}

var commandData = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// escapeCommandData encodes a workflow command payload so multi-line
// messages stay a single command.
func escapeCommandData(s string) string {
	return commandData.Replace(s)
}

// StructuredLogger writes JSON lines through logrus. Used by the long-running
// agent where logs are shipped to an aggregator.
type StructuredLogger struct {
	entry *logrus.Entry
}

func NewStructuredLogger(out io.Writer, debug bool) *StructuredLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return &StructuredLogger{entry: logrus.NewEntry(l)}
}

// WithField returns a logger that attaches key=value to every entry.
func (s *StructuredLogger) WithField(key string, value interface{}) *StructuredLogger {
	return &StructuredLogger{entry: s.entry.WithField(key, value)}
}

func (s *StructuredLogger) Info(msg string, args ...interface{}) {
	s.entry.Infof(msg, args...)
}

func (s *StructuredLogger) Error(msg string, args ...interface{}) {
	s.entry.Errorf(msg, args...)
}

func (s *StructuredLogger) Debug(msg string, args ...interface{}) {
	s.entry.Debugf(msg, args...)
}

// SilentLogger discards all log messages.
// Used in tests and by the MCP server, where stdout carries the protocol.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}
