package application

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	WorkerID  string    `json:"worker_id"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`
}

// WithWorker joins in the worker columns an employer needs when reviewing
// applicants.
type WithWorker struct {
	Application
	WorkerName   string  `json:"worker_name"`
	WorkerSkills string  `json:"skills"`
	WorkerRating float64 `json:"rating"`
	WorkerPhone  string  `json:"phone"`
	WorkerEmail  string  `json:"email"`
}

var (
	ErrNotFound       = errors.New("application not found")
	ErrAlreadyApplied = errors.New("application already exists for this job and worker")
)

type CreateRequest struct {
	JobID string `json:"job_id" binding:"required,uuid"`

	// set from the authenticated caller, never from the body
	WorkerID string `json:"-"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending accepted rejected"`
}

func NewFromCreateRequest(req CreateRequest) Application {
	return Application{
		ID:        uuid.NewString(),
		JobID:     req.JobID,
		WorkerID:  req.WorkerID,
		Status:    StatusPending,
		AppliedAt: time.Now().UTC(),
	}
}
