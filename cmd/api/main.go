package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cherryblossom/internal/collect"
	"cherryblossom/internal/config"
	"cherryblossom/internal/dashboard"
	"cherryblossom/internal/platform/timingsite"
	"cherryblossom/internal/results"
	"cherryblossom/internal/transform"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AdminJWTSecret == "" {
		log.Println("ADMIN_JWT_SECRET is empty; job endpoints will reject every request")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg.DatabaseDSN)
	defer dbPool.Close()

	resultsRepo := results.NewPostgresRepo(dbPool, cfg.DBTimeout)
	collectRepo := collect.NewPostgresRepo(dbPool)

	site := timingsite.NewClient(cfg.SiteBaseURL, cfg.SiteUserAgent, cfg.SiteRPS, cfg.SiteMaxRetries)
	collector := collect.NewService(site, collectRepo, collect.Config{
		Years:       cfg.Years,
		MaxPages:    cfg.CollectMaxPages,
		FlushEvery:  cfg.CollectFlush,
		Concurrency: cfg.CollectWorkers,
	})
	transformer := transform.NewService(collectRepo, resultsRepo, transform.Config{
		Years:   cfg.Years,
		Options: transform.Options{MinFinish: cfg.MinFinish(), MaxFinish: cfg.MaxFinish()},
	})

	router := newRouter(routerDeps{
		db:          dbPool,
		dashboard:   dashboard.NewService(resultsRepo),
		collector:   collector,
		transformer: transformer,
		jobsCtx:     ctx,
		adminSecret: cfg.AdminJWTSecret,
	})

	httpServer := &http.Server{
		Addr: cfg.Addr,
		Handler: withMiddleware(router, middlewareConfig{
			corsOrigins:    cfg.CORSOrigins,
			enableHSTS:     cfg.EnableHSTS,
			rateLimitRPS:   cfg.RateLimitRPS,
			rateLimitBurst: cfg.RateLimitBurst,
			maxBodyBytes:   cfg.MaxBodyBytes,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on %s years=%v", cfg.Addr, cfg.Years)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func mustOpenDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
