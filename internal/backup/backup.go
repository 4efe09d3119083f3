// Package backup periodically writes the current state to timestamped
// export files.
package backup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/metrics"
	"github.com/mmynk/assetsplitter/internal/models"
)

const timestampLayout = "20060102-150405"

// Scheduler runs backups on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	dir      string
	snapshot func() models.StoredState
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewScheduler creates a Scheduler that writes snapshots into dir.
// m may be nil.
func NewScheduler(dir string, snapshot func() models.StoredState, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		dir:      dir,
		snapshot: snapshot,
		metrics:  m,
		now:      time.Now,
	}
}

// ValidateSpec checks a standard five-field cron expression or descriptor
// such as "@hourly".
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Register adds the backup job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("failed to register backup job: %w", err)
	}
	slog.Info("Backup job registered", "spec", spec, "dir", s.dir)
	return nil
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	path, err := s.RunNow()
	s.metrics.RecordBackup(err)
	if err != nil {
		slog.Error("Backup failed", "error", err)
		return
	}
	slog.Info("Backup written", "path", path)
}

// RunNow writes one backup immediately and returns its path.
func (s *Scheduler) RunNow() (string, error) {
	data, err := codec.Export(s.snapshot())
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("asset-splitter-%s.json", s.now().Format(timestampLayout))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}
