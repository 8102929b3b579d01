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
	"github.com/labourhub/backend/internal/notify"
)

type ReviewStore interface {
	CreateAndRecalculate(ctx context.Context, rev review.Review) (rating float64, total int, err error)
	ListForUser(ctx context.Context, userID string) ([]review.WithReviewer, error)
}

type ReviewNotifier interface {
	ReviewReceived(ctx context.Context, p notify.ReviewReceivedPayload) error
}

type RevieweeReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type ReviewsHandler struct {
	reviews    ReviewStore
	users      RevieweeReader
	activities ActivityRecorder
	notifier   ReviewNotifier
}

func NewReviewsHandler(reviews ReviewStore, users RevieweeReader, activities ActivityRecorder, notifier ReviewNotifier) *ReviewsHandler {
	return &ReviewsHandler{
		reviews:    reviews,
		users:      users,
		activities: activities,
		notifier:   notifier,
	}
}

// CreateReview persists a review and the reviewee's refreshed aggregates in
// one step, then reports the new aggregate back.
func (h *ReviewsHandler) CreateReview(ctx *gin.Context) {
	var req review.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	callerID, _ := middlewares.UserIDFromContext(ctx)
	req.FromUserID = callerID

	if req.ToUserID == callerID {
		RespondBadRequest(ctx, "You cannot review yourself", nil)
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if _, err := h.users.GetByID(cctx, req.ToUserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not load user")
		return
	}

	rev := review.NewFromCreateRequest(req)
	rating, total, err := h.reviews.CreateAndRecalculate(cctx, rev)
	if err != nil {
		RespondInternal(ctx, "Could not create review")
		return
	}

	_ = h.activities.Record(cctx, activity.New(req.ToUserID, activity.TypeReviewReceived, "Received a review", rev.ID))
	_ = h.notifier.ReviewReceived(cctx, notify.ReviewReceivedPayload{
		ReviewID:   rev.ID,
		ToUserID:   rev.ToUserID,
		FromUserID: rev.FromUserID,
		Rating:     rev.Rating,
	})

	ctx.JSON(http.StatusCreated, gin.H{
		"review":       rev,
		"rating":       rating,
		"totalReviews": total,
	})
}

func (h *ReviewsHandler) ListForUser(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	reviews, err := h.reviews.ListForUser(cctx, ctx.Param("id"))
	if err != nil {
		RespondInternal(ctx, "Could not load reviews")
		return
	}

	if reviews == nil {
		reviews = []review.WithReviewer{}
	}
	ctx.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
