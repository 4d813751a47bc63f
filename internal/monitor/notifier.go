package monitor

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greenhouse-iot/sensordash/internal/notify"
)

// notifierBuffer is how many notifications may queue before new ones are
// dropped.
const notifierBuffer = 16

// toastMsg carries a notification into the dashboard.
type toastMsg struct {
	id   int64
	kind notify.Kind
	text string
	at   time.Time
}

// Notifier turns notifications into dashboard toasts. It never blocks the
// caller: when the queue is full the notification is dropped and counted.
type Notifier struct {
	ch      chan toastMsg
	seq     atomic.Int64
	dropped atomic.Int64
	now     func() time.Time
}

// NewNotifier creates a Notifier. Pass it to the request client and the
// poller, then to NewModel.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan toastMsg, notifierBuffer), now: time.Now}
}

// Notify implements notify.Notifier.
func (n *Notifier) Notify(kind notify.Kind, message string) {
	msg := toastMsg{id: n.seq.Add(1), kind: kind, text: message, at: n.now()}
	select {
	case n.ch <- msg:
	default:
		n.dropped.Add(1)
	}
}

// Dropped returns how many notifications were discarded.
func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

// wait returns a command that delivers the next notification.
func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		return <-n.ch
	}
}
