package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/searchhub/searchhub/internal/config"
	"github.com/searchhub/searchhub/internal/db"
	httpx "github.com/searchhub/searchhub/internal/http"
	"github.com/searchhub/searchhub/internal/observability"
	"github.com/searchhub/searchhub/internal/redisclient"
	"github.com/searchhub/searchhub/internal/repo/memory"
	"github.com/searchhub/searchhub/internal/repo/postgres"
)

func main() {
	// .env is a local convenience; absence is fine
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.JWTSecret == "" {
		if cfg.Env != "dev" {
			log.Error("JWT_SECRET must be set outside dev")
			os.Exit(1)
		}

		cfg.JWTSecret = "dev-only-insecure-secret"
		log.Warn("JWT_SECRET not set, using insecure dev fallback")
	}

	// tracing (optional)

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "searchhub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	// metrics

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)

	deps := httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Prom:     prom,
		Registry: registry,
		Tracing:  cfg.OTLPEndpoint != "",
	}

	// stores: postgres when configured, in-memory demo mode otherwise

	if cfg.DBURL != "" {
		pool, err := db.NewPool(cfg.DBURL)

		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}

		defer pool.Close()

		startupCtx, cancel := config.WithTimeout(10 * time.Second)

		if err := db.EnsureSchema(startupCtx, pool); err != nil {
			cancel()
			log.Error("schema setup failed", "err", err)
			os.Exit(1)
		}

		usersRepo := postgres.NewUsersRepo(pool, prom)

		if err := db.EnsureSeedUsers(startupCtx, usersRepo, cfg); err != nil {
			cancel()
			log.Error("seed users failed", "err", err)
			os.Exit(1)
		}

		cancel()

		deps.Pool = pool
		deps.Users = usersRepo
		deps.History = postgres.NewHistoryRepo(pool, prom)
	} else {
		log.Warn("no database configured, using in-memory stores")

		usersRepo := memory.NewUsersRepo()

		startupCtx, cancel := config.WithTimeout(10 * time.Second)

		if err := db.EnsureSeedUsers(startupCtx, usersRepo, cfg); err != nil {
			cancel()
			log.Error("seed users failed", "err", err)
			os.Exit(1)
		}

		cancel()

		deps.Users = usersRepo
		deps.History = memory.NewHistoryRepo()
	}

	// redis backs the rate limiter across replicas when configured

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		defer rdb.Close()

		deps.Redis = rdb
	}

	router := httpx.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
