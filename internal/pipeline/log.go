package pipeline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var (
	primary   = lipgloss.Color("#7C3AED")
	secondary = lipgloss.Color("#3B82F6")
	success   = lipgloss.Color("#10B981")
	warning   = lipgloss.Color("#F59E0B")
	failure   = lipgloss.Color("#EF4444")
	muted     = lipgloss.Color("#6B7280")

	labelStyle   = lipgloss.NewStyle().Foreground(primary).Bold(true)
	timeStyle    = lipgloss.NewStyle().Foreground(muted)
	debugStyle   = lipgloss.NewStyle().Foreground(muted)
	infoStyle    = lipgloss.NewStyle().Foreground(secondary)
	warningStyle = lipgloss.NewStyle().Foreground(warning)
	errorStyle   = lipgloss.NewStyle().Foreground(failure).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

type colorLogger struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	verbose bool
}

// NewLogger writes to stderr. Debug lines are dropped unless verbose.
func NewLogger(label string, verbose bool) Logger {
	return NewLoggerTo(os.Stderr, label, verbose)
}

func NewLoggerTo(w io.Writer, label string, verbose bool) Logger {
	return &colorLogger{out: w, label: label, verbose: verbose}
}

func (l *colorLogger) logf(style lipgloss.Style, marker, format string, args ...interface{}) {
	labelToUse := l.label
	if len(labelToUse) < 8 {
		labelToUse = fmt.Sprintf("%-8s", labelToUse)
	}
	line := fmt.Sprintf("%s %s %s\n",
		timeStyle.Render(time.Now().Format("15:04:05")),
		labelStyle.Render(labelToUse),
		style.Render(marker+" "+fmt.Sprintf(format, args...)),
	)
	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, line)
}

func (l *colorLogger) Debugf(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.logf(debugStyle, "·", format, args...)
}

func (l *colorLogger) Infof(format string, args ...interface{}) {
	l.logf(infoStyle, "•", format, args...)
}

func (l *colorLogger) Warningf(format string, args ...interface{}) {
	l.logf(warningStyle, "⚠", format, args...)
}

func (l *colorLogger) Errorf(format string, args ...interface{}) {
	l.logf(errorStyle, "✗", format, args...)
}

// Successf is used for the final line of a run.
func Successf(l Logger, format string, args ...interface{}) {
	if cl, ok := l.(*colorLogger); ok {
		cl.logf(successStyle, "✓", format, args...)
		return
	}
	l.Infof(format, args...)
}
