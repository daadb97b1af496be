// Package notice carries short user-facing messages ("toasts") from state managers to whatever
// is presenting them.
package notice

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Variant distinguishes confirmations from problems.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is one message for the user.
type Notice struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Notifier presents notices.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Info builds a default notice.
func Info(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: VariantDefault}
}

// Problem builds a destructive notice.
func Problem(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: VariantDestructive}
}

// Writer prints notices as lines, e.g. to a terminal.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Notifier printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(_ context.Context, nt Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix := ""
	if nt.Variant == VariantDestructive {
		prefix = "! "
	}
	fmt.Fprintf(n.w, "%s%s: %s\n", prefix, nt.Title, nt.Description)
}

// Recorder keeps every notice it receives, in order.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, nt Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, nt)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice and whether there was one.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
