package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/db"
	"github.com/labourhub/backend/internal/notify"
	"github.com/labourhub/backend/internal/observability"
	"github.com/labourhub/backend/internal/queue/worker"
	"github.com/labourhub/backend/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)

	tasksRepo := postgres.NewTasksRepo(pool, prom)
	notifier := notify.NewLogNotifier(log)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval: time.Second,
		WorkerID:     workerID,
	}, tasksRepo, notifier, log, prom)

	// recover tasks abandoned by a previous crash
	if n, err := tasksRepo.RequeueStale(ctx, 5*time.Minute); err != nil {
		log.Warn("stale requeue failed", "err", err)
	} else if n > 0 {
		log.Info("requeued stale tasks", "count", n)
	}

	// health and metrics on a side port
	mux := http.NewServeMux()
	mux.Handle("/", w.HealthHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port+1),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("worker health server failed", "err", err)
		}
	}()

	log.Info("worker started", "workerId", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker shutdown complete")
}
