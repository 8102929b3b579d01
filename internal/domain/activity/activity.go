package activity

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeJobPosted      = "job_posted"
	TypeJobApplied     = "job_applied"
	TypeSkillsUpdated  = "skills_updated"
	TypeReviewReceived = "review_received"
)

// Activity is an append-only audit trail entry shown on profile pages.
type Activity struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"activity_type"`
	Description string    `json:"description"`
	TargetID    string    `json:"target_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func New(userID, activityType, description, targetID string) Activity {
	return Activity{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        activityType,
		Description: description,
		TargetID:    targetID,
		CreatedAt:   time.Now().UTC(),
	}
}
