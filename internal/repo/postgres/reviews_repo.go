package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labourhub/backend/internal/domain/review"
	"github.com/labourhub/backend/internal/observability"
)

type ReviewsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewReviewsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReviewsRepo {
	return &ReviewsRepo{pool: pool, prom: prom}
}

func (r *ReviewsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// CreateAndRecalculate inserts the review and refreshes the reviewee's
// aggregate rating in the same transaction, so a crash between the two
// writes cannot leave the profile out of sync. Returns the new aggregates.
func (r *ReviewsRepo) CreateAndRecalculate(ctx context.Context, rev review.Review) (rating float64, total int, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("reviews.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO reviews (id, from_user_id, to_user_id, job_id, rating, comment, created_at)
			VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7)`,
			rev.ID, rev.FromUserID, rev.ToUserID, rev.JobID, rev.Rating, rev.Comment, rev.CreatedAt,
		)
		return e
	})
	if err != nil {
		return 0, 0, err
	}

	err = r.observe("reviews.create_tx.recalculate", func() error {
		return tx.QueryRow(ctx, `
			UPDATE users
			SET rating = sub.avg_rating,
			    total_reviews = sub.cnt,
			    updated_at = NOW()
			FROM (
				SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0) AS avg_rating, COUNT(*) AS cnt
				FROM reviews
				WHERE to_user_id = $1
			) AS sub
			WHERE users.id = $1
			RETURNING sub.avg_rating, sub.cnt`,
			rev.ToUserID,
		).Scan(&rating, &total)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, review.ErrNotFound
		}
		return 0, 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return rating, total, nil
}

// ListForUser returns reviews received by a user, newest first, with the
// reviewer's display name joined in.
func (r *ReviewsRepo) ListForUser(ctx context.Context, userID string) ([]review.WithReviewer, error) {
	var out []review.WithReviewer

	err := r.observe("reviews.list_for_user", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT rv.id, rv.from_user_id, rv.to_user_id, COALESCE(rv.job_id::text, ''), rv.rating, rv.comment, rv.created_at,
			       u.name
			FROM reviews rv
			JOIN users u ON u.id = rv.from_user_id
			WHERE rv.to_user_id = $1
			ORDER BY rv.created_at DESC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rw review.WithReviewer
			err := rows.Scan(
				&rw.ID, &rw.FromUserID, &rw.ToUserID, &rw.JobID, &rw.Rating, &rw.Comment, &rw.CreatedAt,
				&rw.ReviewerName,
			)
			if err != nil {
				return err
			}
			out = append(out, rw)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}
