package review

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	JobID      string    `json:"job_id,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// WithReviewer adds the rater's display name for profile pages.
type WithReviewer struct {
	Review
	ReviewerName string `json:"reviewer_name"`
}

var (
	ErrNotFound      = errors.New("review not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrSelfReview    = errors.New("users cannot review themselves")
)

type CreateRequest struct {
	ToUserID string `json:"to_user_id" binding:"required,uuid"`
	JobID    string `json:"job_id" binding:"omitempty,uuid"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"omitempty,max=2000"`

	// set from the authenticated caller, never from the body
	FromUserID string `json:"-"`
}

func NewFromCreateRequest(req CreateRequest) Review {
	return Review{
		ID:         uuid.NewString(),
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		JobID:      req.JobID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  time.Now().UTC(),
	}
}
