package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/assetsplitter/internal/backup"
	"github.com/mmynk/assetsplitter/internal/httpapi"
	"github.com/mmynk/assetsplitter/internal/metrics"
	"github.com/mmynk/assetsplitter/internal/notify"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var origins []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			return a.serve(cmd.Context(), addr, origins)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringSliceVar(&origins, "allowed-origins", nil, "CORS origins (default any)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string, origins []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	toast := notify.NewToast(a.cfg.Notify.DismissAfter)
	n := notify.Multi{toast, notify.LogNotifier{}}

	if err := a.open(ctx, false, n, m); err != nil {
		return err
	}
	defer func() {
		// The serve context is already cancelled here.
		if err := a.close(context.Background()); err != nil {
			slog.Error("Failed to flush state on shutdown", "error", err)
		}
	}()
	slog.Info("Storage initialized", "backend", a.cfg.Storage.Backend, "key", a.cfg.Storage.Key)

	if spec := a.cfg.Backup.Cron; spec != "" {
		sched := backup.NewScheduler(a.cfg.Backup.Dir, a.session.Snapshot, m)
		if err := sched.Register(spec); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Session:        a.session,
		Toast:          toast,
		Metrics:        m,
		Autosaver:      a.autosaver,
		Gatherer:       reg,
		AllowedOrigins: origins,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
