package notify

import (
	"context"
	"log/slog"
	"time"
)

// TaskWriter persists tasks so a worker process can pick them up later.
type TaskWriter interface {
	Enqueue(ctx context.Context, t Task) error
}

// Enqueuer turns domain events into pending delivery tasks. Failures to
// enqueue are logged and swallowed: notification delivery is best-effort
// and must never fail the request that triggered it.
type Enqueuer struct {
	tasks TaskWriter
	log   *slog.Logger
}

func NewEnqueuer(tasks TaskWriter, log *slog.Logger) *Enqueuer {
	return &Enqueuer{tasks: tasks, log: log}
}

// SendCode satisfies the otp code sender contract by queueing a delivery task.
func (e *Enqueuer) SendCode(ctx context.Context, email, purpose, code string, expiresAt time.Time) error {
	return e.enqueue(ctx, TaskSendOTPCode, OTPCodePayload{
		Email:     email,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: expiresAt,
	})
}

func (e *Enqueuer) ApplicationStatusChanged(ctx context.Context, p ApplicationStatusPayload) error {
	return e.enqueue(ctx, TaskApplicationStatus, p)
}

func (e *Enqueuer) ReviewReceived(ctx context.Context, p ReviewReceivedPayload) error {
	return e.enqueue(ctx, TaskReviewReceived, p)
}

func (e *Enqueuer) enqueue(ctx context.Context, t TaskType, payload any) error {
	raw, err := EncodePayload(t, payload)
	if err != nil {
		e.log.ErrorContext(ctx, "task encode failed", "type", t, "error", err)
		return err
	}

	task, err := NewTask(t, raw, time.Time{})
	if err != nil {
		return err
	}

	if err := e.tasks.Enqueue(ctx, task); err != nil {
		e.log.ErrorContext(ctx, "task enqueue failed", "type", t, "error", err)
		return err
	}

	return nil
}
