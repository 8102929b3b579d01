package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labourhub/backend/internal/domain/job"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/http/handlers"
)

const validJobBody = `{
	"title": "Fix kitchen sink",
	"description": "Leaking pipe under the sink.",
	"category": "plumbing",
	"skills_required": "plumbing",
	"location": "Springfield",
	"wage": 120
}`

func TestCreateJob(t *testing.T) {
	tests := []struct {
		name       string
		callerType string
		body       string
		setup      func(*fakeJobStore)
		wantStatus int
	}{
		{
			name:       "employer_creates_job",
			callerType: user.TypeEmployer,
			body:       validJobBody,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "worker_cannot_post",
			callerType: user.TypeWorker,
			body:       validJobBody,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing_title",
			callerType: user.TypeEmployer,
			body:       `{"description": "x", "category": "plumbing", "location": "here", "wage": 10}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero_wage",
			callerType: user.TypeEmployer,
			body:       `{"title": "abc", "description": "x", "category": "plumbing", "location": "here", "wage": 0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store_error",
			callerType: user.TypeEmployer,
			body:       validJobBody,
			setup: func(f *fakeJobStore) {
				f.createFn = func(ctx context.Context, j job.Job) error {
					return errors.New("db down")
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobStore{}
			if tt.setup != nil {
				tt.setup(jobs)
			}
			users := &fakeUserStore{}
			acts := &fakeActivities{}

			h := handlers.NewJobsHandler(jobs, users, acts)
			r := setupRouter(http.MethodPost, "/api/jobs", h.CreateJob, asUser("emp-1", tt.callerType))

			w := doJSON(t, r, http.MethodPost, "/api/jobs", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusCreated {
				body := decodeBody(t, w)
				if body["employer_id"] != "emp-1" {
					t.Fatalf("job not attributed to the caller: %v", body["employer_id"])
				}
				if body["status"] != job.StatusOpen {
					t.Fatalf("new job status = %v, want open", body["status"])
				}
				if users.jobsPostedInc != 1 {
					t.Fatalf("jobs_posted counter not bumped")
				}
				if len(acts.recorded) != 1 {
					t.Fatalf("expected one activity entry, got %d", len(acts.recorded))
				}
			}
		})
	}
}

func TestDeleteJobOwnership(t *testing.T) {
	jobs := &fakeJobStore{
		getByIDFn: func(ctx context.Context, id string) (job.Job, error) {
			return job.Job{ID: id, EmployerID: "emp-1", Title: "x"}, nil
		},
	}

	h := handlers.NewJobsHandler(jobs, &fakeUserStore{}, &fakeActivities{})

	t.Run("owner_deletes", func(t *testing.T) {
		r := setupRouter(http.MethodDelete, "/api/jobs/:id", h.DeleteJob, asUser("emp-1", user.TypeEmployer))
		w := doJSON(t, r, http.MethodDelete, "/api/jobs/j1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
	})

	t.Run("stranger_rejected", func(t *testing.T) {
		r := setupRouter(http.MethodDelete, "/api/jobs/:id", h.DeleteJob, asUser("emp-2", user.TypeEmployer))
		w := doJSON(t, r, http.MethodDelete, "/api/jobs/j1", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing_job", func(t *testing.T) {
		gone := &fakeJobStore{}
		h := handlers.NewJobsHandler(gone, &fakeUserStore{}, &fakeActivities{})
		r := setupRouter(http.MethodDelete, "/api/jobs/:id", h.DeleteJob, asUser("emp-1", user.TypeEmployer))
		w := doJSON(t, r, http.MethodDelete, "/api/jobs/nope", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
		}
	})
}

func TestListJobsEmptyIsAnArray(t *testing.T) {
	h := handlers.NewJobsHandler(&fakeJobStore{}, &fakeUserStore{}, &fakeActivities{})
	r := setupRouter(http.MethodGet, "/api/jobs", h.ListJobs)

	w := doJSON(t, r, http.MethodGet, "/api/jobs", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if _, ok := body["jobs"].([]any); !ok {
		t.Fatalf("jobs should be an array even when empty: %s", w.Body.String())
	}
}
