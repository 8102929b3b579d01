package user

import (
	"errors"
	"time"
)

const (
	TypeWorker   = "worker"
	TypeEmployer = "employer"
)

func IsValidType(t string) bool {
	return t == TypeWorker || t == TypeEmployer
}

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	UserType     string     `json:"userType"`
	Phone        string     `json:"phone"`
	Skills       string     `json:"skills"` // comma-separated free text
	Rating       float64    `json:"rating"`
	TotalReviews int        `json:"total_reviews"`
	JobsApplied  int        `json:"jobs_applied"`
	JobsPosted   int        `json:"jobs_posted"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// CreateRequest carries the registration payload once the OTP has been
// verified. Password here is already plaintext-validated; hashing happens in
// the service layer.
type CreateRequest struct {
	Name     string
	Email    string
	Password string
	UserType string
	Phone    string
}
