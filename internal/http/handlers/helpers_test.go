package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/domain/activity"
	"github.com/labourhub/backend/internal/domain/application"
	"github.com/labourhub/backend/internal/domain/job"
	"github.com/labourhub/backend/internal/domain/review"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/notify"
)

// Make sure gin does not spam the console during tests.
func init() {
	gin.SetMode(gin.TestMode)
}

// setupRouter mounts one handler per test, optionally behind a fake identity.
func setupRouter(method, path string, h gin.HandlerFunc, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	hs := append(mw, h)
	r.Handle(method, path, hs...)
	return r
}

// asUser plants the identity the auth middleware would have set.
func asUser(id, userType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("auth.userID", id)
		c.Set("auth.email", id+"@example.com")
		c.Set("auth.userType", userType)
		c.Next()
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, w.Body.String())
	}
	return out
}

// Fakes shared across the handler tests.

type fakeUserStore struct {
	getByIDFn       func(ctx context.Context, id string) (user.User, error)
	getByEmailFn    func(ctx context.Context, email string) (user.User, error)
	updateProfileFn func(ctx context.Context, id, name, phone, skills string) (user.User, error)
	listWorkersFn   func(ctx context.Context) ([]user.User, error)

	jobsPostedInc  int
	jobsAppliedInc int
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, id, name, phone, skills string) (user.User, error) {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, id, name, phone, skills)
	}
	return user.User{ID: id, Name: name, Phone: phone, Skills: skills}, nil
}

func (f *fakeUserStore) ListWorkers(ctx context.Context) ([]user.User, error) {
	if f.listWorkersFn != nil {
		return f.listWorkersFn(ctx)
	}
	return nil, nil
}

func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (f *fakeUserStore) IncrementJobsPosted(ctx context.Context, id string) error {
	f.jobsPostedInc++
	return nil
}

func (f *fakeUserStore) IncrementJobsApplied(ctx context.Context, id string) error {
	f.jobsAppliedInc++
	return nil
}

type fakeJobStore struct {
	createFn         func(ctx context.Context, j job.Job) error
	getByIDFn        func(ctx context.Context, id string) (job.Job, error)
	listOpenFn       func(ctx context.Context) ([]job.WithEmployer, error)
	listByEmployerFn func(ctx context.Context, employerID string) ([]job.Job, error)
	deleteFn         func(ctx context.Context, id string) error
}

func (f *fakeJobStore) Create(ctx context.Context, j job.Job) error {
	if f.createFn != nil {
		return f.createFn(ctx, j)
	}
	return nil
}

func (f *fakeJobStore) GetByID(ctx context.Context, id string) (job.Job, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return job.Job{}, job.ErrNotFound
}

func (f *fakeJobStore) ListOpen(ctx context.Context) ([]job.WithEmployer, error) {
	if f.listOpenFn != nil {
		return f.listOpenFn(ctx)
	}
	return nil, nil
}

func (f *fakeJobStore) ListByEmployer(ctx context.Context, employerID string) ([]job.Job, error) {
	if f.listByEmployerFn != nil {
		return f.listByEmployerFn(ctx, employerID)
	}
	return nil, nil
}

func (f *fakeJobStore) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeApplicationStore struct {
	createFn       func(ctx context.Context, a application.Application) error
	getByIDFn      func(ctx context.Context, id string) (application.Application, error)
	listByJobFn    func(ctx context.Context, jobID string) ([]application.WithWorker, error)
	listByWorkerFn func(ctx context.Context, workerID string) ([]application.Application, error)
	updateStatusFn func(ctx context.Context, id, status string) error
}

func (f *fakeApplicationStore) Create(ctx context.Context, a application.Application) error {
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	return nil
}

func (f *fakeApplicationStore) GetByID(ctx context.Context, id string) (application.Application, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return application.Application{}, application.ErrNotFound
}

func (f *fakeApplicationStore) ListByJob(ctx context.Context, jobID string) ([]application.WithWorker, error) {
	if f.listByJobFn != nil {
		return f.listByJobFn(ctx, jobID)
	}
	return nil, nil
}

func (f *fakeApplicationStore) ListByWorker(ctx context.Context, workerID string) ([]application.Application, error) {
	if f.listByWorkerFn != nil {
		return f.listByWorkerFn(ctx, workerID)
	}
	return nil, nil
}

func (f *fakeApplicationStore) UpdateStatus(ctx context.Context, id, status string) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

type fakeReviewStore struct {
	createFn func(ctx context.Context, rev review.Review) (float64, int, error)
	listFn   func(ctx context.Context, userID string) ([]review.WithReviewer, error)
}

func (f *fakeReviewStore) CreateAndRecalculate(ctx context.Context, rev review.Review) (float64, int, error) {
	if f.createFn != nil {
		return f.createFn(ctx, rev)
	}
	return float64(rev.Rating), 1, nil
}

func (f *fakeReviewStore) ListForUser(ctx context.Context, userID string) ([]review.WithReviewer, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return nil, nil
}

type fakeActivities struct {
	recorded []activity.Activity
}

func (f *fakeActivities) Record(ctx context.Context, a activity.Activity) error {
	f.recorded = append(f.recorded, a)
	return nil
}

func (f *fakeActivities) ListForUser(ctx context.Context, userID string, limit int) ([]activity.Activity, error) {
	return f.recorded, nil
}

type fakeStatusNotifier struct {
	statusChanges []notify.ApplicationStatusPayload
	reviews       []notify.ReviewReceivedPayload
}

func (f *fakeStatusNotifier) ApplicationStatusChanged(ctx context.Context, p notify.ApplicationStatusPayload) error {
	f.statusChanges = append(f.statusChanges, p)
	return nil
}

func (f *fakeStatusNotifier) ReviewReceived(ctx context.Context, p notify.ReviewReceivedPayload) error {
	f.reviews = append(f.reviews, p)
	return nil
}
