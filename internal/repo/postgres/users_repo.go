package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/observability"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, name, email, password_hash, user_type, phone, skills,
	rating, total_reviews, jobs_applied, jobs_posted, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.UserType, &u.Phone, &u.Skills,
		&u.Rating, &u.TotalReviews, &u.JobsApplied, &u.JobsPosted, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateRequest, passwordHash string) (user.User, error) {
	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		UserType:     req.UserType,
		Phone:        req.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash, user_type, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.UserType, u.Phone, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})

	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	return u, err
}

// UpdateProfile persists the caller-editable profile fields and returns the
// fresh row.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id, name, phone, skills string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.update_profile", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, `
			UPDATE users
			SET name = $2, phone = $3, skills = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns, id, name, phone, skills))
		return err
	})

	return u, err
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.update_password", func() error {
		tag, err = r.pool.Exec(ctx, `
			UPDATE users
			SET password_hash = $2, updated_at = NOW()
			WHERE id = $1`, id, passwordHash)
		return err
	})

	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.observe("users.update_last_login", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
		return err
	})
}

func (r *UsersRepo) ListWorkers(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list_workers", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT `+userColumns+`
			FROM users
			WHERE user_type = $1
			ORDER BY rating DESC, created_at ASC`, user.TypeWorker)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepo) IncrementJobsApplied(ctx context.Context, id string) error {
	return r.observe("users.inc_jobs_applied", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET jobs_applied = jobs_applied + 1, updated_at = NOW() WHERE id = $1`, id)
		return err
	})
}

func (r *UsersRepo) IncrementJobsPosted(ctx context.Context, id string) error {
	return r.observe("users.inc_jobs_posted", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET jobs_posted = jobs_posted + 1, updated_at = NOW() WHERE id = $1`, id)
		return err
	})
}
