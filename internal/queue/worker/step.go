package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labourhub/backend/internal/notify"
)

// ProcessOne claims and executes a single task. It returns false when no
// task was available.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	t, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, notify.ErrNoTask) {
			return false, nil
		}
		return false, err
	}

	w.log.Info("claimed task", "taskId", t.ID, "type", t.Type, "attempt", t.Attempts, "lockedBy", w.cfg.WorkerID)

	start := time.Now()
	if w.prom != nil {
		w.prom.TasksInFlight.Inc()
	}

	execErr := w.execute(ctx, t)

	if w.prom != nil {
		w.prom.TasksInFlight.Dec()
	}

	if execErr != nil {
		w.handleFailure(ctx, t, execErr)
		w.observe(t, start, "retry")
		return true, nil
	}

	if err := w.repo.MarkDone(ctx, t.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, t.ID, "mark_done_failed: "+err.Error())
		w.observe(t, start, "failed")
		return true, err
	}

	w.observe(t, start, "done")
	return true, nil
}

func (w *Worker) execute(ctx context.Context, t notify.Task) error {
	decoded, err := notify.DecodePayload(t)
	if err != nil {
		return err
	}

	switch p := decoded.(type) {
	case notify.OTPCodePayload:
		if time.Now().After(p.ExpiresAt) {
			// the code is dead; delivering it would only confuse the user
			w.log.Warn("dropping expired otp delivery", "taskId", t.ID, "email", p.Email)
			return nil
		}
		return w.notifier.SendOTPCode(ctx, p)

	case notify.ApplicationStatusPayload:
		return w.notifier.SendApplicationStatus(ctx, p)

	case notify.ReviewReceivedPayload:
		return w.notifier.SendReviewReceived(ctx, p)

	default:
		return fmt.Errorf("%w: no executor for %s", notify.ErrInvalidTaskType, t.Type)
	}
}

// handleFailure reschedules with backoff until the task runs out of tries.
func (w *Worker) handleFailure(ctx context.Context, t notify.Task, execErr error) {
	attempt := t.Attempts + 1

	if attempt >= t.MaxTries {
		if err := w.repo.MarkFailed(ctx, t.ID, execErr.Error()); err != nil {
			w.log.Error("mark failed error", "taskId", t.ID, "error", err)
		}
		w.log.Warn("task exhausted retries", "taskId", t.ID, "type", t.Type, "attempts", attempt, "error", execErr)
		return
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(attempt))
	if err := w.repo.Reschedule(ctx, t.ID, runAt, execErr.Error()); err != nil {
		w.log.Error("reschedule error", "taskId", t.ID, "error", err)
		return
	}

	w.log.Info("task rescheduled", "taskId", t.ID, "type", t.Type, "attempt", attempt, "runAt", runAt)
}

func (w *Worker) observe(t notify.Task, start time.Time, result string) {
	if w.prom == nil {
		return
	}
	w.prom.TaskDuration.WithLabelValues(string(t.Type), result).Observe(time.Since(start).Seconds())
	w.prom.TaskResults.WithLabelValues(string(t.Type), result).Inc()
}
