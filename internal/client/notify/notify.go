// Package notify is the port through which the session reports outcomes to
// the user.
package notify

import (
	"fmt"
	"io"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
	LevelInfo    Level = "info"
)

type Notification struct {
	Level   Level
	Message string
}

func (n Notification) String() string {
	return fmt.Sprintf("[%s] %s", n.Level, n.Message)
}

// Notifier receives user-visible notifications. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Console writes one line per notification.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var prefix string
	switch n.Level {
	case LevelSuccess:
		prefix = "✔"
	case LevelFailure:
		prefix = "✖"
	default:
		prefix = "•"
	}
	fmt.Fprintf(c.w, "%s %s\n", prefix, n.Message)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})
