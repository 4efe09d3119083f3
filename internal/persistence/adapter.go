// Package persistence loads and saves the StoredState document through a
// storage.Backend, and debounces writes triggered by state changes.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/metrics"
	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/storage"
)

// DefaultKey is the key the state document is stored under.
const DefaultKey = "bananaData"

// Adapter reads and writes the state document.
type Adapter struct {
	backend storage.Backend
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMetrics records loads and saves on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates an Adapter over backend.
func NewAdapter(backend storage.Backend, opts ...Option) *Adapter {
	a := &Adapter{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load returns the document stored under key, or def when there is none.
// A document that cannot be decoded is treated as absent: the failure is
// logged and counted, never returned.
func (a *Adapter) Load(ctx context.Context, key string, def models.StoredState) models.StoredState {
	data, err := a.backend.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return def
	}
	if err != nil {
		a.logger.Error("Failed to read stored state, using default", "key", key, "error", err)
		return def
	}

	state, err := codec.Import(data)
	if err != nil {
		a.logger.Warn("Discarding malformed stored state", "key", key, "error", err)
		a.metrics.RecordLoadFallback()
		return def
	}
	return state
}

// Save encodes state and writes it under key.
func (a *Adapter) Save(ctx context.Context, key string, state models.StoredState) error {
	start := time.Now()
	err := a.save(ctx, key, state)
	a.metrics.RecordSave(time.Since(start).Seconds(), err)
	if err != nil {
		return err
	}
	a.logger.Debug("State saved", "key", key, "assets", len(state.Assets))
	return nil
}

func (a *Adapter) save(ctx context.Context, key string, state models.StoredState) error {
	data, err := codec.Export(state)
	if err != nil {
		return err
	}
	if err := a.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Exists reports whether anything is stored under key, malformed or not.
func (a *Adapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.backend.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check state: %w", err)
	}
	return true, nil
}

// Reset removes the stored document.
func (a *Adapter) Reset(ctx context.Context, key string) error {
	if err := a.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to reset state: %w", err)
	}
	return nil
}
