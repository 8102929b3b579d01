package notify

import "errors"

var (
	ErrInvalidTaskType    = errors.New("invalid task type")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrInvalidTaskPayload = errors.New("invalid task payload")
	ErrNoTask             = errors.New("no task available")
)
