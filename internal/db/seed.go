package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labourhub/backend/internal/domain/job"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/security"
)

// EnsureDemoData inserts a demo employer, worker and job on an empty dev
// database so the API is explorable without going through the OTP flow.
func EnsureDemoData(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := security.HashPassword("Demo123!@")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	employerID := uuid.NewString()
	workerID := uuid.NewString()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, user_type, phone, skills, created_at, updated_at)
		VALUES
			($1, 'Demo Employer', 'employer@demo.local', $3, $4, '+10000000001', '', $6, $6),
			($2, 'Demo Worker', 'worker@demo.local', $3, $5, '+10000000002', 'plumbing, painting, carpentry', $6, $6)`,
		employerID, workerID, hash, user.TypeEmployer, user.TypeWorker, now,
	)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO jobs (id, title, description, category, skills_required, location, wage, employer_id, status, created_at)
		VALUES ($1, 'Fix kitchen sink', 'Leaking pipe under the kitchen sink needs replacing.', 'plumbing', 'plumbing', 'Springfield', 120, $2, $3, $4)`,
		uuid.NewString(), employerID, job.StatusOpen, now,
	)
	return err
}
