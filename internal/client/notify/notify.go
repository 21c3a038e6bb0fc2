// Package notify shows transient, non-blocking messages to the console user.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Notifier is the toast surface every console component reports through.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

var (
	successColor = lipgloss.Color("#8BC34A")
	errorColor   = lipgloss.Color("#e53935")
)

// Terminal prints notifications as coloured one-shot lines.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{
		w: w,
		success: lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true),
		failure: lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true),
	}
}

func (t *Terminal) Success(msg string) {
	t.print(t.success, "✓ "+msg)
}

func (t *Terminal) Error(msg string) {
	t.print(t.failure, "✗ "+msg)
}

func (t *Terminal) print(style lipgloss.Style, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, style.Render(msg))
}

// Message is one recorded notification.
type Message struct {
	Success bool
	Text    string
}

// Recorder keeps notifications in memory. Used by tests and by callers
// that want to inspect what the user was told.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Success(msg string) { r.add(Message{Success: true, Text: msg}) }

func (r *Recorder) Error(msg string) { r.add(Message{Text: msg}) }

func (r *Recorder) add(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Errors returns the texts of the recorded error notifications.
func (r *Recorder) Errors() []string {
	var out []string
	for _, m := range r.Messages() {
		if !m.Success {
			out = append(out, m.Text)
		}
	}
	return out
}

// Successes returns the texts of the recorded success notifications.
func (r *Recorder) Successes() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Success {
			out = append(out, m.Text)
		}
	}
	return out
}
