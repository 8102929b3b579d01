package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/labourhub/backend/internal/notify"
	"github.com/labourhub/backend/internal/observability"
)

// TasksRepository is the slice of task persistence the worker needs.
type TasksRepository interface {
	ClaimNext(ctx context.Context, workerID string) (notify.Task, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, reason string) error
}

type Config struct {
	PollInterval time.Duration
	WorkerID     string
}

type Worker struct {
	cfg      Config
	repo     TasksRepository
	notifier notify.Notifier
	log      *slog.Logger
	prom     *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo TasksRepository, notifier notify.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		log:      log,
		prom:     prom,
	}
}

// Run polls for claimable tasks until ctx is cancelled. After a processed
// task it drains immediately instead of waiting a full tick, so bursts
// clear quickly.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil

		case <-ticker.C:
			for {
				processed, err := w.ProcessOne(ctx)
				if err != nil {
					w.log.Error("task processing error", "error", err)
					break
				}
				if !processed {
					break
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		}
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
