package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/labourhub/backend/internal/auth"
	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/db"
	httpx "github.com/labourhub/backend/internal/http"
	"github.com/labourhub/backend/internal/notify"
	"github.com/labourhub/backend/internal/observability"
	"github.com/labourhub/backend/internal/queue/redisclient"
	"github.com/labourhub/backend/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing is optional; without an endpoint spans are simply dropped
	if cfg.OtelEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "labourhub-api", cfg.OtelEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)

	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	migrateCtx, cancel := config.WithTimeout(30 * time.Second)
	if err := db.Migrate(migrateCtx, pool); err != nil {
		cancel()
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}
	cancel()

	if cfg.SeedDemoData {
		seedCtx, cancel := config.WithTimeout(10 * time.Second)
		if err := db.EnsureDemoData(seedCtx, pool); err != nil {
			log.Warn("demo seed failed", "err", err)
		}
		cancel()
	}

	var redisClient *redisclient.Client
	if cfg.RedisAddr != "" {
		redisClient = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		pingCtx, cancel := config.WithTimeout(2 * time.Second)
		if err := redisClient.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, otp falls back to memory", "err", err)
			redisClient = nil
		}
		cancel()
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	tasksRepo := postgres.NewTasksRepo(pool, prom)
	enqueuer := notify.NewEnqueuer(tasksRepo, log)

	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Pool:     pool,
		Redis:    redisClient,
		Prom:     prom,
		PromReg:  promReg,
		JWT:      jwtManager,
		Enqueuer: enqueuer,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")
	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
