// Package notify defines the notification capability the data layer uses to
// surface transient messages to whatever UI is attached.
package notify

import (
	"sync"

	"github.com/greenhouse-iot/sensordash/internal/logger"
)

// Kind classifies a notification.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

// String returns a lowercase label for the kind.
func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier receives transient user-facing messages.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Func adapts a plain function to the Notifier interface.
type Func func(kind Kind, message string)

// Notify calls f(kind, message).
func (f Func) Notify(kind Kind, message string) {
	f(kind, message)
}

type discard struct{}

func (discard) Notify(Kind, string) {}

// Discard returns a Notifier that drops every message.
func Discard() Notifier {
	return discard{}
}

// LogNotifier forwards notifications to a Logger, mapping kinds onto levels.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
// A nil logger uses logger.Default().
func NewLogNotifier(l logger.Logger) *LogNotifier {
	if l == nil {
		l = logger.Default()
	}
	return &LogNotifier{log: l}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(kind Kind, message string) {
	switch kind {
	case KindError:
		n.log.Error("%s", message)
	case KindWarning:
		n.log.Warn("%s", message)
	default:
		n.log.Info("%s", message)
	}
}

// Notification is a captured message.
type Notification struct {
	Kind    Kind
	Message string
}

// Recorder captures notifications for inspection in tests.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier.
func (r *Recorder) Notify(kind Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Kind: kind, Message: message})
}

// All returns a copy of every captured notification in order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Count returns how many notifications of the given kind were captured.
func (r *Recorder) Count(kind Kind) int {
	n := 0
	for _, item := range r.All() {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

// Reset discards captured notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
