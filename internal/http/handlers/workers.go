package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/domain/application"
	"github.com/labourhub/backend/internal/domain/review"
	"github.com/labourhub/backend/internal/domain/user"
)

// WorkerApplications is the slice of the applications repo the worker detail
// page needs.
type WorkerApplications interface {
	ListByWorker(ctx context.Context, workerID string) ([]application.Application, error)
}

type WorkersHandler struct {
	users   UserStore
	reviews ReviewLister
	apps    WorkerApplications
}

func NewWorkersHandler(users UserStore, reviews ReviewLister, apps WorkerApplications) *WorkersHandler {
	return &WorkersHandler{users: users, reviews: reviews, apps: apps}
}

// recentApplicationsShown caps the application history on the worker detail
// page.
const recentApplicationsShown = 5

// ListWorkers returns worker profiles for employer browsing, best rated first.
func (h *WorkersHandler) ListWorkers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	workers, err := h.users.ListWorkers(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not load workers")
		return
	}

	if workers == nil {
		workers = []user.User{}
	}
	ctx.JSON(http.StatusOK, gin.H{"workers": workers})
}

// workerProfile is the composite body for GET /api/workers/:id, the view an
// employer gets when sizing up an applicant.
type workerProfile struct {
	user.User
	Reviews            []review.WithReviewer     `json:"reviews"`
	RecentApplications []application.Application `json:"recent_applications"`
}

// GetWorker returns the worker row plus their reviews and most recent
// applications. The side lists degrade to empty on error.
func (h *WorkersHandler) GetWorker(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	id := ctx.Param("id")

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "Worker not found")
			return
		}
		RespondInternal(ctx, "Could not load worker")
		return
	}

	if u.UserType != user.TypeWorker {
		RespondNotFound(ctx, "Worker not found")
		return
	}

	reviews, err := h.reviews.ListForUser(cctx, id)
	if err != nil || reviews == nil {
		reviews = []review.WithReviewer{}
	}

	recent, err := h.apps.ListByWorker(cctx, id)
	if err != nil || recent == nil {
		recent = []application.Application{}
	}
	if len(recent) > recentApplicationsShown {
		recent = recent[:recentApplicationsShown]
	}

	ctx.JSON(http.StatusOK, workerProfile{User: u, Reviews: reviews, RecentApplications: recent})
}
