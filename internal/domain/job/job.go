package job

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	SkillsRequired string    `json:"skills_required"` // comma-separated free text
	Location       string    `json:"location"`
	Wage           float64   `json:"wage"`
	EmployerID     string    `json:"employer_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// EmployerSummary is embedded in job listings so the frontend does not need a
// second round trip for contact details.
type EmployerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type WithEmployer struct {
	Job
	Employer EmployerSummary `json:"employer"`
}

var ErrNotFound = errors.New("job not found")

type CreateRequest struct {
	Title          string  `json:"title" binding:"required,min=3,max=120"`
	Description    string  `json:"description" binding:"required,max=2000"`
	Category       string  `json:"category" binding:"required,min=2,max=80"`
	SkillsRequired string  `json:"skills_required" binding:"omitempty,max=500"`
	Location       string  `json:"location" binding:"required,min=2,max=120"`
	Wage           float64 `json:"wage" binding:"required,gt=0"`

	// set from the authenticated caller, never from the body
	EmployerID string `json:"-"`
}

func NewFromCreateRequest(req CreateRequest) Job {
	return Job{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		SkillsRequired: req.SkillsRequired,
		Location:       req.Location,
		Wage:           req.Wage,
		EmployerID:     req.EmployerID,
		Status:         StatusOpen,
		CreatedAt:      time.Now().UTC(),
	}
}
