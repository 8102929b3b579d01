package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskSendOTPCode       TaskType = "send_otp_code"
	TaskApplicationStatus TaskType = "application_status_changed"
	TaskReviewReceived    TaskType = "review_received"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskSendOTPCode, TaskApplicationStatus, TaskReviewReceived:
		return true
	default:
		return false
	}
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskSucceeded  TaskStatus = "succeeded"
	TaskFailed     TaskStatus = "failed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskProcessing, TaskSucceeded, TaskFailed:
		return true
	default:
		return false
	}
}

// Task is a unit of asynchronous delivery work, backed by the tasks table.
type Task struct {
	ID        string          `json:"id"`
	Type      TaskType        `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    TaskStatus      `json:"status"`
	Attempts  int             `json:"attempts"`
	MaxTries  int             `json:"maxTries"`
	RunAt     time.Time       `json:"runAt"`
	LastError *string         `json:"lastError,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewTask creates a pending task with defaults. A zero runAt means run now.
func NewTask(t TaskType, payloadJSON json.RawMessage, runAt time.Time) (Task, error) {
	if !t.IsValid() {
		return Task{}, ErrInvalidTaskType
	}

	now := time.Now().UTC()

	if runAt.IsZero() {
		runAt = now
	}

	return Task{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payloadJSON,
		Status:    TaskPending,
		Attempts:  0,
		MaxTries:  5,
		RunAt:     runAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
