package main

import (
	"log/slog"
	"net/http"
	"net/url"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/kakeibo/internal/metrics"
	"github.com/mmynk/kakeibo/internal/middleware"
	"github.com/mmynk/kakeibo/internal/service"
	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/pkg/docrpc"
)

// newRouter mounts the document service, health check and metrics.
func newRouter(store storage.Store, tokens middleware.TokenValidator, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Metrics first so rejected calls are counted; logging last so it sees the subject.
	path, handler := docrpc.NewDocumentServiceHandler(
		service.NewDocumentService(store, logger),
		connect.WithInterceptors(
			middleware.MetricsInterceptor(metrics.New(reg)),
			middleware.RequireAuth(tokens),
			middleware.LoggingInterceptor(logger),
		),
	)
	r.Mount(path, handler)
	return r
}

// redact hides the password of a database URL.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
