package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/assetsplitter/internal/config"
	"github.com/mmynk/assetsplitter/internal/metrics"
	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/notify"
	"github.com/mmynk/assetsplitter/internal/persistence"
	"github.com/mmynk/assetsplitter/internal/session"
	"github.com/mmynk/assetsplitter/internal/storage"
	"github.com/mmynk/assetsplitter/internal/storage/file"
	"github.com/mmynk/assetsplitter/internal/storage/memory"
	"github.com/mmynk/assetsplitter/internal/storage/redis"
	"github.com/mmynk/assetsplitter/internal/storage/sqlite"
	"github.com/mmynk/assetsplitter/pkg/logging"
)

var errNoState = errors.New("no saved data; run init first")

// app carries what every command needs: configuration, the opened backend
// and a session whose changes are autosaved.
type app struct {
	configPath string
	cfg        *config.Config

	backend   storage.Backend
	adapter   *persistence.Adapter
	session   *session.Session
	autosaver *persistence.Autosaver
}

// loadConfig runs before every command.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg
	logging.SetupWith(cfg.Log.Level, cfg.Log.Format)
	return nil
}

// open connects to storage and loads the session. With guard set, it fails
// when nothing has been saved yet.
func (a *app) open(ctx context.Context, guard bool, n notify.Notifier, m *metrics.Metrics) error {
	backend, err := openBackend(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.backend = backend
	a.adapter = persistence.NewAdapter(backend, persistence.WithMetrics(m))

	key := a.cfg.Storage.Key
	if guard {
		ok, err := a.adapter.Exists(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return errNoState
		}
	}

	state := a.adapter.Load(ctx, key, models.EmptyState())
	a.session = session.New(state, session.WithNotifier(n), session.WithMetrics(m))
	a.autosaver = persistence.NewAutosaver(a.adapter, key, a.cfg.Autosave.Debounce, a.session.Snapshot, n)
	a.session.OnChange(a.autosaver.Schedule)
	return nil
}

// close writes any pending change and releases the backend.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.autosaver != nil {
		errs = append(errs, a.autosaver.Flush(ctx))
	}
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	return errors.Join(errs...)
}

// run opens the session, calls fn and flushes on the way out.
func (a *app) run(cmd *cobra.Command, guard bool, fn func(ctx context.Context, s *session.Session) error) (err error) {
	ctx := cmd.Context()
	n := notify.Func(func(message string) {
		fmt.Fprintln(cmd.ErrOrStderr(), message)
	})
	defer func() {
		if cerr := a.close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := a.open(ctx, guard, n, nil); err != nil {
		return err
	}
	return fn(ctx, a.session)
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	s := cfg.Storage
	slog.Debug("Opening storage", "backend", s.Backend)
	switch s.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		return sqlite.New(s.SQLitePath)
	case config.BackendRedis:
		return redis.Open(ctx, s.RedisURL, s.RedisTimeout)
	case config.BackendFile:
		return file.New(s.FileDir)
	}
	return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
}
