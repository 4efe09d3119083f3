// Package notify implements the fire-and-forget notification surface.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Messages shown to the user.
const (
	MsgSaved = "Changes saved"
)

// DefaultDismissAfter is how long a toast stays visible.
const DefaultDismissAfter = 2 * time.Second

// Notifier receives user-facing messages. Implementations must not block.
type Notifier interface {
	Notify(message string)
}

// Func adapts a function to Notifier.
type Func func(message string)

func (f Func) Notify(message string) { f(message) }

// Multi fans a message out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(message)
		}
	}
}

// LogNotifier writes messages to slog at Info level.
type LogNotifier struct{}

func (LogNotifier) Notify(message string) {
	slog.Info("Notification", "message", message)
}

// Toast holds the most recent message and hides it after a fixed delay.
// A new message restarts the delay.
type Toast struct {
	mu      sync.Mutex
	delay   time.Duration
	message string
	visible bool
	timer   *time.Timer
	seq     uint64
}

// NewToast returns a Toast that dismisses after delay.
func NewToast(delay time.Duration) *Toast {
	if delay <= 0 {
		delay = DefaultDismissAfter
	}
	return &Toast{delay: delay}
}

// Notify shows message and schedules its dismissal.
func (t *Toast) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.message = message
	t.visible = true
	t.seq++
	seq := t.seq
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		// A newer message owns the toast now.
		if t.seq == seq {
			t.visible = false
		}
	})
}

// Current returns the last message and whether it is still visible.
func (t *Toast) Current() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.message, t.visible
}

// Dismiss hides the toast immediately.
func (t *Toast) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = false
	if t.timer != nil {
		t.timer.Stop()
	}
}
