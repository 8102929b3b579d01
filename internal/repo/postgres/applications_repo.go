package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labourhub/backend/internal/domain/application"
	"github.com/labourhub/backend/internal/observability"
)

type ApplicationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewApplicationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ApplicationsRepo {
	return &ApplicationsRepo{pool: pool, prom: prom}
}

func (r *ApplicationsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create relies on the (job_id, worker_id) unique index to reject duplicate
// applications, so concurrent submits cannot race past an existence check.
func (r *ApplicationsRepo) Create(ctx context.Context, a application.Application) error {
	err := r.observe("applications.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO applications (id, job_id, worker_id, status, applied_at)
			VALUES ($1, $2, $3, $4, $5)`,
			a.ID, a.JobID, a.WorkerID, a.Status, a.AppliedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return application.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (application.Application, error) {
	var a application.Application
	var err error

	err = r.observe("applications.get_by_id", func() error {
		err = r.pool.QueryRow(ctx, `
			SELECT id, job_id, worker_id, status, applied_at
			FROM applications
			WHERE id = $1`, id,
		).Scan(&a.ID, &a.JobID, &a.WorkerID, &a.Status, &a.AppliedAt)
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

// ListByJob joins in the worker columns an employer reviews applicants by.
func (r *ApplicationsRepo) ListByJob(ctx context.Context, jobID string) ([]application.WithWorker, error) {
	var out []application.WithWorker

	err := r.observe("applications.list_by_job", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT a.id, a.job_id, a.worker_id, a.status, a.applied_at,
			       u.name, u.skills, u.rating, u.phone, u.email
			FROM applications a
			JOIN users u ON u.id = a.worker_id
			WHERE a.job_id = $1
			ORDER BY a.applied_at ASC`, jobID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var aw application.WithWorker
			err := rows.Scan(
				&aw.ID, &aw.JobID, &aw.WorkerID, &aw.Status, &aw.AppliedAt,
				&aw.WorkerName, &aw.WorkerSkills, &aw.WorkerRating, &aw.WorkerPhone, &aw.WorkerEmail,
			)
			if err != nil {
				return err
			}
			out = append(out, aw)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationsRepo) ListByWorker(ctx context.Context, workerID string) ([]application.Application, error) {
	var out []application.Application

	err := r.observe("applications.list_by_worker", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT id, job_id, worker_id, status, applied_at
			FROM applications
			WHERE worker_id = $1
			ORDER BY applied_at DESC`, workerID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a application.Application
			if err := rows.Scan(&a.ID, &a.JobID, &a.WorkerID, &a.Status, &a.AppliedAt); err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationsRepo) UpdateStatus(ctx context.Context, id, status string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("applications.update_status", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE applications SET status = $2 WHERE id = $1`, id, status)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}
