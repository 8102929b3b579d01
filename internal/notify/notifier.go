package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Notifier delivers user-facing messages. The log implementation stands in
// for an email/SMS provider; swapping in a real provider only touches this
// interface's implementation.
type Notifier interface {
	SendOTPCode(ctx context.Context, p OTPCodePayload) error
	SendApplicationStatus(ctx context.Context, p ApplicationStatusPayload) error
	SendReviewReceived(ctx context.Context, p ReviewReceivedPayload) error
}

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendOTPCode(ctx context.Context, p OTPCodePayload) error {
	if err := n.simulateProvider(ctx); err != nil {
		return err
	}

	// never log the code itself
	n.log.InfoContext(ctx, "notification.otp_code",
		"email", p.Email,
		"purpose", p.Purpose,
		"expiresAt", p.ExpiresAt,
	)
	return nil
}

func (n *LogNotifier) SendApplicationStatus(ctx context.Context, p ApplicationStatusPayload) error {
	if err := n.simulateProvider(ctx); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.application_status",
		"applicationId", p.ApplicationID,
		"jobId", p.JobID,
		"workerId", p.WorkerID,
		"status", p.Status,
	)
	return nil
}

func (n *LogNotifier) SendReviewReceived(ctx context.Context, p ReviewReceivedPayload) error {
	if err := n.simulateProvider(ctx); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.review_received",
		"reviewId", p.ReviewID,
		"toUserId", p.ToUserID,
		"rating", p.Rating,
	)
	return nil
}

// simulateProvider lets local runs exercise slow or failing delivery paths.
func (n *LogNotifier) simulateProvider(ctx context.Context) error {
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}
