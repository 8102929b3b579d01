package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/domain/activity"
	"github.com/labourhub/backend/internal/domain/review"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/http/middlewares"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id, name, phone, skills string) (user.User, error)
	ListWorkers(ctx context.Context) ([]user.User, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, a activity.Activity) error
	ListForUser(ctx context.Context, userID string, limit int) ([]activity.Activity, error)
}

// ReviewLister is the read slice of the reviews repo the profile endpoints
// need.
type ReviewLister interface {
	ListForUser(ctx context.Context, userID string) ([]review.WithReviewer, error)
}

type UsersHandler struct {
	users      UserStore
	activities ActivityRecorder
	reviews    ReviewLister
}

func NewUsersHandler(users UserStore, activities ActivityRecorder, reviews ReviewLister) *UsersHandler {
	return &UsersHandler{users: users, activities: activities, reviews: reviews}
}

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,min=2,max=120"`
	Phone  string `json:"phone" binding:"omitempty,max=32"`
	Skills string `json:"skills" binding:"omitempty,max=500"`
}

// userProfile is the composite body for GET /api/user/:id. The counters
// (jobs_applied, rating, total_reviews) ride on the embedded user row.
type userProfile struct {
	user.User
	Reviews    []review.WithReviewer `json:"reviews"`
	Activities []activity.Activity   `json:"activities"`
}

// GetUser returns the profile together with the reviews and recent activity
// shown on the profile page. The side lists degrade to empty on error.
func (h *UsersHandler) GetUser(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	id := ctx.Param("id")

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not load user")
		return
	}

	reviews, err := h.reviews.ListForUser(cctx, id)
	if err != nil || reviews == nil {
		reviews = []review.WithReviewer{}
	}
	activities, err := h.activities.ListForUser(cctx, id, 20)
	if err != nil || activities == nil {
		activities = []activity.Activity{}
	}

	ctx.JSON(http.StatusOK, userProfile{User: u, Reviews: reviews, Activities: activities})
}

// UpdateUser lets a user edit their own profile. Absent fields keep their
// current value.
func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id := ctx.Param("id")

	callerID, _ := middlewares.UserIDFromContext(ctx)
	if callerID != id {
		RespondUnauthorized(ctx, "You can only edit your own profile")
		return
	}

	var req UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	current, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not load user")
		return
	}

	name := current.Name
	if req.Name != "" {
		name = req.Name
	}
	phone := current.Phone
	if req.Phone != "" {
		phone = req.Phone
	}
	skills := current.Skills
	skillsChanged := false
	if req.Skills != "" && req.Skills != current.Skills {
		skills = req.Skills
		skillsChanged = true
	}

	updated, err := h.users.UpdateProfile(cctx, id, name, phone, skills)
	if err != nil {
		RespondInternal(ctx, "Could not update profile")
		return
	}

	if skillsChanged {
		// best effort; the trail is informational
		_ = h.activities.Record(cctx, activity.New(id, activity.TypeSkillsUpdated, "Updated skill list", ""))
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) GetActivities(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.activities.ListForUser(cctx, ctx.Param("id"), 20)
	if err != nil {
		RespondInternal(ctx, "Could not load activity")
		return
	}

	if items == nil {
		items = []activity.Activity{}
	}
	ctx.JSON(http.StatusOK, gin.H{"activities": items})
}
