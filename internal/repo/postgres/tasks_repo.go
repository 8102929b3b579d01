package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labourhub/backend/internal/notify"
	"github.com/labourhub/backend/internal/observability"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, prom: prom}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *TasksRepo) Enqueue(ctx context.Context, t notify.Task) error {
	return r.observe("tasks.enqueue", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO tasks (id, type, payload, status, attempts, max_tries, run_at, last_error, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, string(t.Type), []byte(t.Payload), string(t.Status), t.Attempts, t.MaxTries, t.RunAt, t.LastError, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
}

// ClaimNext atomically takes the oldest runnable task using SKIP LOCKED, so
// competing worker processes never grab the same row.
func (r *TasksRepo) ClaimNext(ctx context.Context, workerID string) (notify.Task, error) {
	var t notify.Task
	var err error

	err = r.observe("tasks.claim_next", func() error {
		return r.pool.QueryRow(ctx, `
			WITH next AS (
				SELECT id
				FROM tasks
				WHERE status = 'pending'
				  AND run_at <= NOW()
				  AND attempts < max_tries
				ORDER BY run_at ASC, created_at ASC
				FOR UPDATE SKIP LOCKED
				LIMIT 1
			)
			UPDATE tasks
			SET status = 'processing',
			    attempts = attempts + 1,
			    locked_at = NOW(),
			    locked_by = $1,
			    updated_at = NOW()
			WHERE id = (SELECT id FROM next)
			RETURNING id, type, payload, status, attempts - 1, max_tries, run_at, last_error, created_at, updated_at`,
			workerID,
		).Scan(&t.ID, &t.Type, &t.Payload, &t.Status, &t.Attempts, &t.MaxTries, &t.RunAt, &t.LastError, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notify.Task{}, notify.ErrNoTask
		}
		return notify.Task{}, err
	}
	return t, nil
}

func (r *TasksRepo) MarkDone(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("tasks.mark_done", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks
			SET status = 'succeeded',
			    locked_at = NULL,
			    locked_by = NULL,
			    last_error = NULL,
			    updated_at = NOW()
			WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notify.ErrNoTask
	}
	return nil
}

func (r *TasksRepo) MarkFailed(ctx context.Context, id, reason string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("tasks.mark_failed", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks
			SET status = 'failed',
			    locked_at = NULL,
			    locked_by = NULL,
			    last_error = $2,
			    updated_at = NOW()
			WHERE id = $1`, id, reason)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notify.ErrNoTask
	}
	return nil
}

// Reschedule releases a failed attempt back to pending with a future run_at.
func (r *TasksRepo) Reschedule(ctx context.Context, id string, runAt time.Time, reason string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("tasks.reschedule", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks
			SET status = 'pending',
			    run_at = $2,
			    locked_at = NULL,
			    locked_by = NULL,
			    last_error = $3,
			    updated_at = NOW()
			WHERE id = $1`, id, runAt, reason)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notify.ErrNoTask
	}
	return nil
}

// RequeueStale returns tasks stuck in processing, usually after a worker
// crash, back to pending.
func (r *TasksRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("tasks.requeue_stale", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE tasks
			SET status = 'pending',
			    locked_at = NULL,
			    locked_by = NULL,
			    updated_at = NOW()
			WHERE status = 'processing'
			  AND locked_at < NOW() - make_interval(secs => $1)`,
			olderThan.Seconds())
		return err
	})

	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
