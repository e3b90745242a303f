package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/edge-probe/internal/delivery/http/handler"
	"github.com/user/edge-probe/internal/delivery/http/middleware"
	"github.com/user/edge-probe/pkg/metrics"
)

func New(h *handler.Handler) http.Handler {
	metrics.Init()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Get("/api/health", h.HandleHealthCheck)
	r.Post("/api/diagnose", h.HandleDiagnose)
	r.Get("/api/runs/latest", h.HandleLatestRun)
	r.Get("/api/runs", h.HandleListRuns)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
