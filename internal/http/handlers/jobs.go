package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/domain/activity"
	"github.com/labourhub/backend/internal/domain/job"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/http/middlewares"
)

type JobStore interface {
	Create(ctx context.Context, j job.Job) error
	GetByID(ctx context.Context, id string) (job.Job, error)
	ListOpen(ctx context.Context) ([]job.WithEmployer, error)
	ListByEmployer(ctx context.Context, employerID string) ([]job.Job, error)
	Delete(ctx context.Context, id string) error
}

type JobCounters interface {
	IncrementJobsPosted(ctx context.Context, id string) error
}

type JobsHandler struct {
	jobs       JobStore
	counters   JobCounters
	activities ActivityRecorder
}

func NewJobsHandler(jobs JobStore, counters JobCounters, activities ActivityRecorder) *JobsHandler {
	return &JobsHandler{jobs: jobs, counters: counters, activities: activities}
}

func (h *JobsHandler) ListJobs(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// an employer asking for their own postings gets all statuses
	if employerID := ctx.Query("employerId"); employerID != "" {
		jobs, err := h.jobs.ListByEmployer(cctx, employerID)
		if err != nil {
			RespondInternal(ctx, "Could not load jobs")
			return
		}
		if jobs == nil {
			jobs = []job.Job{}
		}
		ctx.JSON(http.StatusOK, gin.H{"jobs": jobs})
		return
	}

	jobs, err := h.jobs.ListOpen(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not load jobs")
		return
	}

	if jobs == nil {
		jobs = []job.WithEmployer{}
	}
	ctx.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// CreateJob posts a new opening attributed to the authenticated employer.
func (h *JobsHandler) CreateJob(ctx *gin.Context) {
	callerType, _ := middlewares.UserTypeFromContext(ctx)
	if callerType != user.TypeEmployer {
		RespondUnauthorized(ctx, "Only employers can post jobs")
		return
	}

	var req job.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	callerID, _ := middlewares.UserIDFromContext(ctx)
	req.EmployerID = callerID

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	j := job.NewFromCreateRequest(req)
	if err := h.jobs.Create(cctx, j); err != nil {
		RespondInternal(ctx, "Could not create job")
		return
	}

	// counters and the activity trail are best effort
	_ = h.counters.IncrementJobsPosted(cctx, callerID)
	_ = h.activities.Record(cctx, activity.New(callerID, activity.TypeJobPosted, "Posted job: "+j.Title, j.ID))

	ctx.JSON(http.StatusCreated, j)
}

// DeleteJob removes a posting and, through the schema, its applications.
func (h *JobsHandler) DeleteJob(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	j, err := h.jobs.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondNotFound(ctx, "Job not found")
			return
		}
		RespondInternal(ctx, "Could not load job")
		return
	}

	callerID, _ := middlewares.UserIDFromContext(ctx)
	if j.EmployerID != callerID {
		RespondUnauthorized(ctx, "You can only delete your own jobs")
		return
	}

	if err := h.jobs.Delete(cctx, id); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondNotFound(ctx, "Job not found")
			return
		}
		RespondInternal(ctx, "Could not delete job")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}
