package notify

import (
	"encoding/json"
	"fmt"
	"time"
)

// OTPCodePayload carries a one-time code to the delivery worker.
// The code is short-lived, so delivery past ExpiresAt is pointless.
type OTPCodePayload struct {
	Email     string    `json:"email"`
	Purpose   string    `json:"purpose"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ApplicationStatusPayload notifies a worker that an employer moved
// their application to a new status.
type ApplicationStatusPayload struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	JobTitle      string `json:"jobTitle"`
	WorkerID      string `json:"workerId"`
	Status        string `json:"status"`
}

// ReviewReceivedPayload notifies a user that someone reviewed them.
type ReviewReceivedPayload struct {
	ReviewID   string `json:"reviewId"`
	ToUserID   string `json:"toUserId"`
	FromUserID string `json:"fromUserId"`
	Rating     int    `json:"rating"`
}

func EncodePayload(t TaskType, payload any) (json.RawMessage, error) {
	if !t.IsValid() {
		return nil, ErrInvalidTaskType
	}

	ok := false
	switch t {
	case TaskSendOTPCode:
		_, ok = payload.(OTPCodePayload)
	case TaskApplicationStatus:
		_, ok = payload.(ApplicationStatusPayload)
	case TaskReviewReceived:
		_, ok = payload.(ReviewReceivedPayload)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %T for %s", ErrInvalidTaskPayload, payload, t)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaskPayload, err)
	}

	return json.RawMessage(b), nil
}

// DecodePayload unmarshals a task's payload into the typed struct for its type.
func DecodePayload(t Task) (any, error) {
	if !t.Type.IsValid() {
		return nil, ErrInvalidTaskType
	}
	if len(t.Payload) == 0 {
		return nil, ErrInvalidTaskPayload
	}

	switch t.Type {
	case TaskSendOTPCode:
		var p OTPCodePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaskPayload, err)
		}
		return p, nil

	case TaskApplicationStatus:
		var p ApplicationStatusPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaskPayload, err)
		}
		return p, nil

	case TaskReviewReceived:
		var p ReviewReceivedPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaskPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidTaskType
	}
}
