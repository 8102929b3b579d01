package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/domain/activity"
	"github.com/labourhub/backend/internal/domain/application"
	"github.com/labourhub/backend/internal/domain/job"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/http/middlewares"
	"github.com/labourhub/backend/internal/notify"
)

type ApplicationStore interface {
	Create(ctx context.Context, a application.Application) error
	GetByID(ctx context.Context, id string) (application.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]application.WithWorker, error)
	ListByWorker(ctx context.Context, workerID string) ([]application.Application, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type ApplicationCounters interface {
	IncrementJobsApplied(ctx context.Context, id string) error
}

type StatusNotifier interface {
	ApplicationStatusChanged(ctx context.Context, p notify.ApplicationStatusPayload) error
}

type ApplicationsHandler struct {
	apps       ApplicationStore
	jobs       JobStore
	counters   ApplicationCounters
	activities ActivityRecorder
	notifier   StatusNotifier
}

func NewApplicationsHandler(apps ApplicationStore, jobs JobStore, counters ApplicationCounters, activities ActivityRecorder, notifier StatusNotifier) *ApplicationsHandler {
	return &ApplicationsHandler{
		apps:       apps,
		jobs:       jobs,
		counters:   counters,
		activities: activities,
		notifier:   notifier,
	}
}

// Apply creates an application for the authenticated worker. The store's
// unique index is the authority on duplicates.
func (h *ApplicationsHandler) Apply(ctx *gin.Context) {
	callerType, _ := middlewares.UserTypeFromContext(ctx)
	if callerType != user.TypeWorker {
		RespondUnauthorized(ctx, "Only workers can apply to jobs")
		return
	}

	var req application.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	callerID, _ := middlewares.UserIDFromContext(ctx)
	req.WorkerID = callerID

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	j, err := h.jobs.GetByID(cctx, req.JobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			RespondNotFound(ctx, "Job not found")
			return
		}
		RespondInternal(ctx, "Could not load job")
		return
	}

	a := application.NewFromCreateRequest(req)
	if err := h.apps.Create(cctx, a); err != nil {
		if errors.Is(err, application.ErrAlreadyApplied) {
			RespondConflict(ctx, "already_applied", "You have already applied to this job.")
			return
		}
		RespondInternal(ctx, "Could not create application")
		return
	}

	_ = h.counters.IncrementJobsApplied(cctx, callerID)
	_ = h.activities.Record(cctx, activity.New(callerID, activity.TypeJobApplied, "Applied to job: "+j.Title, j.ID))

	ctx.JSON(http.StatusCreated, a)
}

// ListForJob returns a job's applicants to its owning employer.
func (h *ApplicationsHandler) ListForJob(ctx *gin.Context) {
	jobID := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	j, err := h.jobs.GetByID(cctx, jobID)
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
		RespondUnauthorized(ctx, "You can only view applications for your own jobs")
		return
	}

	apps, err := h.apps.ListByJob(cctx, jobID)
	if err != nil {
		RespondInternal(ctx, "Could not load applications")
		return
	}

	if apps == nil {
		apps = []application.WithWorker{}
	}
	ctx.JSON(http.StatusOK, gin.H{"applications": apps})
}

// ListMine returns the authenticated worker's own applications.
func (h *ApplicationsHandler) ListMine(ctx *gin.Context) {
	callerID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	apps, err := h.apps.ListByWorker(cctx, callerID)
	if err != nil {
		RespondInternal(ctx, "Could not load applications")
		return
	}

	if apps == nil {
		apps = []application.Application{}
	}
	ctx.JSON(http.StatusOK, gin.H{"applications": apps})
}

// UpdateStatus lets the owning employer accept or reject an applicant.
func (h *ApplicationsHandler) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	var req application.UpdateStatusRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.apps.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			RespondNotFound(ctx, "Application not found")
			return
		}
		RespondInternal(ctx, "Could not load application")
		return
	}

	j, err := h.jobs.GetByID(cctx, a.JobID)
	if err != nil {
		RespondInternal(ctx, "Could not load job")
		return
	}

	callerID, _ := middlewares.UserIDFromContext(ctx)
	if j.EmployerID != callerID {
		RespondUnauthorized(ctx, "You can only manage applications for your own jobs")
		return
	}

	if err := h.apps.UpdateStatus(cctx, id, req.Status); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			RespondNotFound(ctx, "Application not found")
			return
		}
		RespondInternal(ctx, "Could not update application")
		return
	}

	// best-effort delivery to the worker
	_ = h.notifier.ApplicationStatusChanged(cctx, notify.ApplicationStatusPayload{
		ApplicationID: a.ID,
		JobID:         j.ID,
		JobTitle:      j.Title,
		WorkerID:      a.WorkerID,
		Status:        req.Status,
	})

	a.Status = req.Status
	ctx.JSON(http.StatusOK, a)
}
