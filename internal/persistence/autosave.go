package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/notify"
)

// DefaultDebounce is the quiet period before a scheduled write fires.
const DefaultDebounce = 500 * time.Millisecond

// Autosaver collapses bursts of state changes into a single write.
//
// Every Schedule call restarts the quiet period. When it elapses, the
// snapshot function is called at that moment, so the write always holds
// the latest state rather than the state at schedule time.
type Autosaver struct {
	adapter  *Adapter
	key      string
	delay    time.Duration
	snapshot func() models.StoredState
	notifier notify.Notifier

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	gen     uint64

	// writeMu serializes writes so an older snapshot never lands after a
	// newer one. It is never acquired while mu is held.
	writeMu sync.Mutex
}

// NewAutosaver creates an Autosaver writing snapshot() under key.
// notifier may be nil.
func NewAutosaver(adapter *Adapter, key string, delay time.Duration, snapshot func() models.StoredState, notifier notify.Notifier) *Autosaver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Autosaver{
		adapter:  adapter,
		key:      key,
		delay:    delay,
		snapshot: snapshot,
		notifier: notifier,
	}
}

// Schedule (re)starts the quiet period.
func (s *Autosaver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = true
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// Pending reports whether a write is scheduled.
func (s *Autosaver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Flush writes immediately if a write is pending. It also waits for a
// write the timer already started, so a nil return means nothing is in flight.
func (s *Autosaver) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.take() {
		return nil
	}
	return s.write(ctx)
}

// Discard cancels any pending write, waits for one in flight, and deletes
// the stored document.
func (s *Autosaver) Discard(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.take()
	return s.adapter.Reset(ctx, s.key)
}

// Stop cancels any pending write.
func (s *Autosaver) Stop() {
	s.take()
}

// take clears the pending flag and stops the timer. It reports whether a
// write was pending.
func (s *Autosaver) take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	was := s.pending
	s.pending = false
	return was
}

func (s *Autosaver) fire(gen uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	// A later Schedule or a Flush superseded this timer.
	if gen != s.gen || !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.mu.Unlock()

	if err := s.write(context.Background()); err != nil {
		slog.Error("Autosave failed", "key", s.key, "error", err)
	}
}

// write saves the current snapshot. Callers must hold writeMu.
func (s *Autosaver) write(ctx context.Context) error {
	if err := s.adapter.Save(ctx, s.key, s.snapshot()); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Notify(notify.MsgSaved)
	}
	return nil
}
