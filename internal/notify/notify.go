package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Notifier surfaces one-line, user-visible messages.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Info(string)    {}
func (Nop) Success(string) {}
func (Nop) Error(string)   {}

// LogNotifier mirrors notifications into the structured log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Info(msg string) {
	n.logger().Info("notify", zap.String("level", "info"), zap.String("message", msg))
}
func (n LogNotifier) Success(msg string) {
	n.logger().Info("notify", zap.String("level", "success"), zap.String("message", msg))
}
func (n LogNotifier) Error(msg string) {
	n.logger().Warn("notify", zap.String("level", "error"), zap.String("message", msg))
}

func (n LogNotifier) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#79C0FF"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7EE787")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA657")).Bold(true)
)

// TerminalNotifier prints styled one-liners, like a toast.
type TerminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out}
}

func (n *TerminalNotifier) Info(msg string)    { n.write(infoStyle.Render("ℹ " + msg)) }
func (n *TerminalNotifier) Success(msg string) { n.write(successStyle.Render("✓ " + msg)) }
func (n *TerminalNotifier) Error(msg string)   { n.write(errorStyle.Render("✗ " + msg)) }

func (n *TerminalNotifier) write(line string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, line)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Info(msg string) {
	for _, n := range m {
		n.Info(msg)
	}
}

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}

// Entry is a recorded notification.
type Entry struct {
	Level   string
	Message string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Info(msg string)    { r.add("info", msg) }
func (r *Recorder) Success(msg string) { r.add("success", msg) }
func (r *Recorder) Error(msg string)   { r.add("error", msg) }

// Entries returns a copy of the recorded notifications.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Last returns the most recent entry of level, if any.
func (r *Recorder) Last(level string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Level == level {
			return r.entries[i], true
		}
	}
	return Entry{}, false
}

func (r *Recorder) add(level, msg string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
	r.mu.Unlock()
}
