package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema idempotently at startup. The statements are
// ordered so foreign keys always reference existing tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            uuid PRIMARY KEY,
			name          text NOT NULL,
			email         text NOT NULL,
			password_hash text NOT NULL,
			user_type     text NOT NULL CHECK (user_type IN ('worker', 'employer')),
			phone         text NOT NULL DEFAULT '',
			skills        text NOT NULL DEFAULT '',
			rating        numeric(3,2) NOT NULL DEFAULT 0,
			total_reviews integer NOT NULL DEFAULT 0,
			jobs_applied  integer NOT NULL DEFAULT 0,
			jobs_posted   integer NOT NULL DEFAULT 0,
			last_login    timestamptz,
			created_at    timestamptz NOT NULL DEFAULT NOW(),
			updated_at    timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_uniq ON users (LOWER(email))`,

		`CREATE TABLE IF NOT EXISTS jobs (
			id              uuid PRIMARY KEY,
			title           text NOT NULL,
			description     text NOT NULL,
			category        text NOT NULL,
			skills_required text NOT NULL DEFAULT '',
			location        text NOT NULL,
			wage            numeric(12,2) NOT NULL,
			employer_id     uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status          text NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'in-progress', 'completed')),
			created_at      timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS jobs_status_created_idx ON jobs (status, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS jobs_employer_idx ON jobs (employer_id)`,

		`CREATE TABLE IF NOT EXISTS applications (
			id         uuid PRIMARY KEY,
			job_id     uuid NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			worker_id  uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status     text NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
			applied_at timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS applications_job_worker_uniq ON applications (job_id, worker_id)`,

		`CREATE TABLE IF NOT EXISTS reviews (
			id           uuid PRIMARY KEY,
			from_user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			to_user_id   uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			job_id       uuid REFERENCES jobs(id) ON DELETE SET NULL,
			rating       integer NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment      text NOT NULL DEFAULT '',
			created_at   timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS reviews_to_user_idx ON reviews (to_user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS activities (
			id            uuid PRIMARY KEY,
			user_id       uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			activity_type text NOT NULL,
			description   text NOT NULL DEFAULT '',
			target_id     uuid,
			created_at    timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS activities_user_idx ON activities (user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id         uuid PRIMARY KEY,
			type       text NOT NULL,
			payload    jsonb NOT NULL,
			status     text NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processing', 'succeeded', 'failed')),
			attempts   integer NOT NULL DEFAULT 0,
			max_tries  integer NOT NULL DEFAULT 5,
			run_at     timestamptz NOT NULL DEFAULT NOW(),
			locked_at  timestamptz,
			locked_by  text,
			last_error text,
			created_at timestamptz NOT NULL DEFAULT NOW(),
			updated_at timestamptz NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS tasks_claim_idx ON tasks (status, run_at) WHERE status = 'pending'`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
