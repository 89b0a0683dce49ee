package main

import (
	"context"
	"net/http"
	"time"

	"cherryblossom/internal/collect"
	"cherryblossom/internal/dashboard"
	"cherryblossom/internal/httpx"
	"cherryblossom/internal/transform"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	db          Pinger
	dashboard   *dashboard.Service
	collector   *collect.Service
	transformer *transform.Service
	jobsCtx     context.Context
	adminSecret string
}

func newRouter(deps routerDeps) *http.ServeMux {
	api := dashboard.NewHTTPHandler(deps.dashboard)
	page := dashboard.NewPageHandler(deps.dashboard)
	collectHandler := collect.NewHTTPHandler(deps.jobsCtx, deps.collector)
	transformHandler := transform.NewHTTPHandler(deps.transformer)
	admin := httpx.AdminMiddleware(deps.adminSecret)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := deps.db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /{$}", page.Dashboard)

	router.HandleFunc("GET /v1/years", api.Years)
	router.HandleFunc("GET /v1/years/{year}/datasets", api.History)
	router.HandleFunc("GET /v1/results", api.Results)
	router.HandleFunc("GET /v1/stats/summary", api.Summary)
	router.HandleFunc("GET /v1/charts/pace-distribution", api.PaceDistribution)
	router.HandleFunc("GET /v1/charts/participation", api.Participation)
	router.HandleFunc("GET /v1/charts/finish-by/{group}", api.FinishBy)
	router.HandleFunc("GET /v1/export.csv", api.ExportCSV)
	router.HandleFunc("GET /v1/export.xlsx", api.ExportXLSX)

	router.Handle("POST /internal/jobs/collect", admin(http.HandlerFunc(collectHandler.Collect)))
	router.Handle("GET /internal/jobs/collect/runs", admin(http.HandlerFunc(collectHandler.Runs)))
	router.Handle("POST /internal/jobs/transform", admin(http.HandlerFunc(transformHandler.Transform)))

	return router
}

type middlewareConfig struct {
	corsOrigins    []string
	enableHSTS     bool
	rateLimitRPS   float64
	rateLimitBurst int
	maxBodyBytes   int64
}

// withMiddleware wraps h so the request id is set first and recovery sits
// inside the access log.
func withMiddleware(h http.Handler, cfg middlewareConfig) http.Handler {
	limiter := httpx.NewRateLimitMiddleware(cfg.rateLimitRPS, cfg.rateLimitBurst)

	h = httpx.RequestSizeLimitMiddleware(cfg.maxBodyBytes)(h)
	h = limiter.Middleware(h)
	h = httpx.CORSMiddleware(cfg.corsOrigins)(h)
	h = httpx.SecurityHeadersMiddleware(cfg.enableHSTS)(h)
	h = httpx.RecoveryMiddleware(h)
	h = httpx.AccessLogMiddleware(h)
	return httpx.RequestIDMiddleware(h)
}
