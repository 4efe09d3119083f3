package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Persistence metrics
	Saves         prometheus.Counter
	SaveErrors    prometheus.Counter
	SaveDuration  prometheus.Histogram
	LoadFallbacks prometheus.Counter

	// Import/export metrics
	Imports *prometheus.CounterVec
	Exports prometheus.Counter

	// Report metrics
	Reports *prometheus.CounterVec

	// Backup metrics
	Backups      prometheus.Counter
	BackupErrors prometheus.Counter
}

// New creates all metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Saves: f.NewCounter(prometheus.CounterOpts{
			Name: "assetsplitter_saves_total",
			Help: "Total number of state documents written to storage",
		}),
		SaveErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "assetsplitter_save_errors_total",
			Help: "Total number of failed state writes",
		}),
		SaveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetsplitter_save_duration_seconds",
			Help:    "Duration of state writes",
			Buckets: prometheus.DefBuckets,
		}),
		LoadFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "assetsplitter_load_fallbacks_total",
			Help: "Total number of loads that fell back to the default state because the stored document was malformed",
		}),
		Imports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetsplitter_imports_total",
				Help: "Total number of import attempts by result",
			},
			[]string{"result"},
		),
		Exports: f.NewCounter(prometheus.CounterOpts{
			Name: "assetsplitter_exports_total",
			Help: "Total number of exported documents",
		}),
		Reports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetsplitter_reports_total",
				Help: "Total number of generated reports by kind",
			},
			[]string{"kind"},
		),
		Backups: f.NewCounter(prometheus.CounterOpts{
			Name: "assetsplitter_backups_total",
			Help: "Total number of backup snapshots written",
		}),
		BackupErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "assetsplitter_backup_errors_total",
			Help: "Total number of failed backup snapshots",
		}),
	}
}

// RecordSave records a state write and its duration in seconds.
func (m *Metrics) RecordSave(seconds float64, err error) {
	if m == nil {
		return
	}
	m.SaveDuration.Observe(seconds)
	if err != nil {
		m.SaveErrors.Inc()
		return
	}
	m.Saves.Inc()
}

// RecordLoadFallback records a malformed stored document.
func (m *Metrics) RecordLoadFallback() {
	if m == nil {
		return
	}
	m.LoadFallbacks.Inc()
}

// RecordImport records an import attempt; result is "applied" or "rejected".
func (m *Metrics) RecordImport(result string) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(result).Inc()
}

// RecordExport records an exported document.
func (m *Metrics) RecordExport() {
	if m == nil {
		return
	}
	m.Exports.Inc()
}

// RecordReport records a generated report.
func (m *Metrics) RecordReport(kind string) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(kind).Inc()
}

// RecordBackup records a backup snapshot attempt.
func (m *Metrics) RecordBackup(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.BackupErrors.Inc()
		return
	}
	m.Backups.Inc()
}
