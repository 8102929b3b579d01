package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/labourhub/backend/internal/notify"
)

type fakeTasksRepo struct {
	claimFn     func(ctx context.Context, workerID string) (notify.Task, error)
	doneIDs     []string
	failed      map[string]string
	rescheduled map[string]time.Time
	markDoneErr error
}

func newFakeTasksRepo() *fakeTasksRepo {
	return &fakeTasksRepo{
		failed:      map[string]string{},
		rescheduled: map[string]time.Time{},
	}
}

func (f *fakeTasksRepo) ClaimNext(ctx context.Context, workerID string) (notify.Task, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, workerID)
	}
	return notify.Task{}, notify.ErrNoTask
}

func (f *fakeTasksRepo) MarkDone(ctx context.Context, id string) error {
	if f.markDoneErr != nil {
		return f.markDoneErr
	}
	f.doneIDs = append(f.doneIDs, id)
	return nil
}

func (f *fakeTasksRepo) MarkFailed(ctx context.Context, id, reason string) error {
	f.failed[id] = reason
	return nil
}

func (f *fakeTasksRepo) Reschedule(ctx context.Context, id string, runAt time.Time, reason string) error {
	f.rescheduled[id] = runAt
	return nil
}

type fakeNotifier struct {
	otpErr  error
	otpSent []notify.OTPCodePayload
}

func (f *fakeNotifier) SendOTPCode(ctx context.Context, p notify.OTPCodePayload) error {
	if f.otpErr != nil {
		return f.otpErr
	}
	f.otpSent = append(f.otpSent, p)
	return nil
}

func (f *fakeNotifier) SendApplicationStatus(ctx context.Context, p notify.ApplicationStatusPayload) error {
	return nil
}

func (f *fakeNotifier) SendReviewReceived(ctx context.Context, p notify.ReviewReceivedPayload) error {
	return nil
}

func otpTask(t *testing.T, expiresAt time.Time) notify.Task {
	t.Helper()

	raw, err := notify.EncodePayload(notify.TaskSendOTPCode, notify.OTPCodePayload{
		Email:     "w@example.com",
		Purpose:   "register",
		Code:      "123456",
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	task, err := notify.NewTask(notify.TaskSendOTPCode, raw, time.Time{})
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	return task
}

func newTestWorker(repo TasksRepository, n notify.Notifier) *Worker {
	return New(Config{PollInterval: time.Second, WorkerID: "test-1"}, repo, n, slog.New(slog.DiscardHandler), nil)
}

func TestProcessOneNoTask(t *testing.T) {
	w := newTestWorker(newFakeTasksRepo(), &fakeNotifier{})

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("ProcessOne failed: %v", err)
	}
	if processed {
		t.Fatal("expected no task to be processed")
	}
}

func TestProcessOneDeliversAndMarksDone(t *testing.T) {
	task := otpTask(t, time.Now().Add(5*time.Minute))
	repo := newFakeTasksRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (notify.Task, error) {
		return task, nil
	}
	n := &fakeNotifier{}

	processed, err := newTestWorker(repo, n).ProcessOne(context.Background())

	if err != nil || !processed {
		t.Fatalf("ProcessOne = (%v, %v), want (true, nil)", processed, err)
	}
	if len(n.otpSent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(n.otpSent))
	}
	if len(repo.doneIDs) != 1 || repo.doneIDs[0] != task.ID {
		t.Fatalf("task not marked done: %v", repo.doneIDs)
	}
}

func TestProcessOneReschedulesOnProviderError(t *testing.T) {
	task := otpTask(t, time.Now().Add(5*time.Minute))
	repo := newFakeTasksRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (notify.Task, error) {
		return task, nil
	}

	processed, err := newTestWorker(repo, &fakeNotifier{otpErr: errors.New("provider down")}).ProcessOne(context.Background())

	if err != nil || !processed {
		t.Fatalf("ProcessOne = (%v, %v), want (true, nil)", processed, err)
	}
	if _, ok := repo.rescheduled[task.ID]; !ok {
		t.Fatal("failed task was not rescheduled")
	}
	if len(repo.failed) != 0 {
		t.Fatalf("task failed permanently too early: %v", repo.failed)
	}
}

func TestProcessOneFailsPermanentlyAfterMaxTries(t *testing.T) {
	task := otpTask(t, time.Now().Add(5*time.Minute))
	task.Attempts = task.MaxTries - 1
	repo := newFakeTasksRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (notify.Task, error) {
		return task, nil
	}

	_, err := newTestWorker(repo, &fakeNotifier{otpErr: errors.New("provider down")}).ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("ProcessOne failed: %v", err)
	}
	if _, ok := repo.failed[task.ID]; !ok {
		t.Fatal("exhausted task was not marked failed")
	}
}

func TestProcessOneDropsExpiredOTP(t *testing.T) {
	task := otpTask(t, time.Now().Add(-time.Minute))
	repo := newFakeTasksRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (notify.Task, error) {
		return task, nil
	}
	n := &fakeNotifier{}

	processed, err := newTestWorker(repo, n).ProcessOne(context.Background())

	if err != nil || !processed {
		t.Fatalf("ProcessOne = (%v, %v), want (true, nil)", processed, err)
	}
	if len(n.otpSent) != 0 {
		t.Fatal("expired code was still delivered")
	}
	if len(repo.doneIDs) != 1 {
		t.Fatal("expired task should still be marked done")
	}
}

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	if ExponentialBackoff(0) < 2*time.Second {
		t.Fatal("first retry should wait at least the base delay")
	}
	if ExponentialBackoff(3) < ExponentialBackoff(1) {
		t.Fatal("backoff should grow with attempts")
	}
	if ExponentialBackoff(30) > 5*time.Minute+time.Second {
		t.Fatal("backoff should cap at five minutes")
	}
}
