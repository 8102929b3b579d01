package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labourhub/backend/internal/domain/job"
	"github.com/labourhub/backend/internal/observability"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{pool: pool, prom: prom}
}

func (r *JobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *JobsRepo) Create(ctx context.Context, j job.Job) error {
	return r.observe("jobs.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO jobs (id, title, description, category, skills_required, location, wage, employer_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			j.ID, j.Title, j.Description, j.Category, j.SkillsRequired, j.Location, j.Wage, j.EmployerID, j.Status, j.CreatedAt,
		)
		return err
	})
}

func (r *JobsRepo) GetByID(ctx context.Context, id string) (job.Job, error) {
	var j job.Job
	var err error

	err = r.observe("jobs.get_by_id", func() error {
		err = r.pool.QueryRow(ctx, `
			SELECT id, title, description, category, skills_required, location, wage, employer_id, status, created_at
			FROM jobs
			WHERE id = $1`, id,
		).Scan(&j.ID, &j.Title, &j.Description, &j.Category, &j.SkillsRequired, &j.Location, &j.Wage, &j.EmployerID, &j.Status, &j.CreatedAt)
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}
	return j, nil
}

// ListOpen returns open jobs newest first, each with its employer's contact
// summary joined in.
func (r *JobsRepo) ListOpen(ctx context.Context) ([]job.WithEmployer, error) {
	var out []job.WithEmployer

	err := r.observe("jobs.list_open", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT j.id, j.title, j.description, j.category, j.skills_required, j.location, j.wage, j.employer_id, j.status, j.created_at,
			       u.id, u.name, u.email, u.phone
			FROM jobs j
			JOIN users u ON u.id = j.employer_id
			WHERE j.status = $1
			ORDER BY j.created_at DESC`, job.StatusOpen)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var jw job.WithEmployer
			err := rows.Scan(
				&jw.ID, &jw.Title, &jw.Description, &jw.Category, &jw.SkillsRequired, &jw.Location, &jw.Wage, &jw.EmployerID, &jw.Status, &jw.CreatedAt,
				&jw.Employer.ID, &jw.Employer.Name, &jw.Employer.Email, &jw.Employer.Phone,
			)
			if err != nil {
				return err
			}
			out = append(out, jw)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *JobsRepo) ListByEmployer(ctx context.Context, employerID string) ([]job.Job, error) {
	var out []job.Job

	err := r.observe("jobs.list_by_employer", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT id, title, description, category, skills_required, location, wage, employer_id, status, created_at
			FROM jobs
			WHERE employer_id = $1
			ORDER BY created_at DESC`, employerID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var j job.Job
			err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.Category, &j.SkillsRequired, &j.Location, &j.Wage, &j.EmployerID, &j.Status, &j.CreatedAt)
			if err != nil {
				return err
			}
			out = append(out, j)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a job along with its applications. The FK on applications
// cascades, so a single statement suffices.
func (r *JobsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("jobs.delete", func() error {
		tag, err = r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return job.ErrNotFound
	}
	return nil
}
