// Package httpapi exposes a session over a JSON HTTP API for a rendering
// layer such as a browser front end.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/mmynk/assetsplitter/internal/metrics"
	"github.com/mmynk/assetsplitter/internal/notify"
	"github.com/mmynk/assetsplitter/internal/persistence"
	"github.com/mmynk/assetsplitter/internal/session"
)

// maxImportBytes bounds the size of an uploaded import document.
const maxImportBytes = 10 << 20

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Session *session.Session
	Toast   *notify.Toast
	Metrics *metrics.Metrics
	// Autosaver, when set, has its stored document deleted on reset.
	Autosaver *persistence.Autosaver
	// Gatherer backs /metrics. Nil leaves the endpoint unregistered.
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	// Now stamps generated reports. Defaults to time.Now.
	Now func() time.Time
}

// NewRouter creates the HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	h := &handler{
		session:   cfg.Session,
		toast:     cfg.Toast,
		metrics:   cfg.Metrics,
		autosaver: cfg.Autosaver,
		now:       cfg.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.health)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.getState)
		r.Delete("/state", h.resetState)
		r.Post("/start", h.start)
		r.Put("/parties", h.setParties)

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", h.addAsset)
			r.Patch("/{id}", h.updateAsset)
			r.Put("/{id}/allocation", h.setAllocation)
			r.Delete("/{id}", h.deleteAsset)
		})

		r.Get("/totals", h.getTotals)
		r.Post("/import", h.importState)
		r.Get("/export", h.exportState)
		r.Get("/report/{kind}", h.report)
		r.Get("/notification", h.notification)
	})

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}).Handler(r)
}
