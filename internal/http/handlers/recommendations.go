package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/domain/job"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/match"
)

type RecommendationsHandler struct {
	users UserStore
	jobs  JobStore
}

func NewRecommendationsHandler(users UserStore, jobs JobStore) *RecommendationsHandler {
	return &RecommendationsHandler{users: users, jobs: jobs}
}

// ForWorker scores every open job against the worker's skill list and
// returns the best matches.
func (h *RecommendationsHandler) ForWorker(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, ctx.Param("id"))
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

	open, err := h.jobs.ListOpen(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not load jobs")
		return
	}

	jobs := make([]job.Job, 0, len(open))
	for _, jw := range open {
		jobs = append(jobs, jw.Job)
	}

	scored := match.Recommend(match.NormalizeSkills(u.Skills), jobs)
	if scored == nil {
		scored = []match.ScoredJob{}
	}

	ctx.JSON(http.StatusOK, gin.H{"recommendations": scored})
}
