package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labourhub/backend/internal/domain/activity"
	"github.com/labourhub/backend/internal/observability"
)

type ActivitiesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewActivitiesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ActivitiesRepo {
	return &ActivitiesRepo{pool: pool, prom: prom}
}

func (r *ActivitiesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ActivitiesRepo) Record(ctx context.Context, a activity.Activity) error {
	return r.observe("activities.record", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO activities (id, user_id, activity_type, description, target_id, created_at)
			VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6)`,
			a.ID, a.UserID, a.Type, a.Description, a.TargetID, a.CreatedAt,
		)
		return err
	})
}

// ListForUser returns the most recent activity entries for a profile page.
func (r *ActivitiesRepo) ListForUser(ctx context.Context, userID string, limit int) ([]activity.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var out []activity.Activity

	err := r.observe("activities.list_for_user", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT id, user_id, activity_type, description, COALESCE(target_id::text, ''), created_at
			FROM activities
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2`, userID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a activity.Activity
			if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Description, &a.TargetID, &a.CreatedAt); err != nil {
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
