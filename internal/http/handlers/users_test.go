package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labourhub/backend/internal/domain/activity"
	"github.com/labourhub/backend/internal/domain/review"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/http/handlers"
)

func existingWorker(id string) *fakeUserStore {
	return &fakeUserStore{
		getByIDFn: func(ctx context.Context, gotID string) (user.User, error) {
			if gotID != id {
				return user.User{}, user.ErrNotFound
			}
			return user.User{
				ID:       id,
				Name:     "Asha Patel",
				Phone:    "555-0101",
				Skills:   "plumbing, welding",
				UserType: user.TypeWorker,
			}, nil
		},
	}
}

func TestUpdateUserOwnProfileOnly(t *testing.T) {
	users := existingWorker("w-1")
	acts := &fakeActivities{}
	h := handlers.NewUsersHandler(users, acts, &fakeReviewStore{})

	r := setupRouter(http.MethodPut, "/api/user/:id", h.UpdateUser, asUser("w-2", "worker"))
	w := doJSON(t, r, http.MethodPut, "/api/user/w-1", `{"name":"Mallory"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if len(acts.recorded) != 0 {
		t.Fatalf("recorded %d activities, want none", len(acts.recorded))
	}
}

func TestUpdateUserMergesAbsentFields(t *testing.T) {
	users := existingWorker("w-1")
	acts := &fakeActivities{}
	h := handlers.NewUsersHandler(users, acts, &fakeReviewStore{})

	r := setupRouter(http.MethodPut, "/api/user/:id", h.UpdateUser, asUser("w-1", "worker"))
	w := doJSON(t, r, http.MethodPut, "/api/user/w-1", `{"name":"Asha P."}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["name"] != "Asha P." {
		t.Errorf("name = %v, want Asha P.", body["name"])
	}
	if body["phone"] != "555-0101" {
		t.Errorf("phone = %v, want kept value 555-0101", body["phone"])
	}
	if body["skills"] != "plumbing, welding" {
		t.Errorf("skills = %v, want kept value", body["skills"])
	}
	if len(acts.recorded) != 0 {
		t.Fatalf("recorded %d activities, want none (skills unchanged)", len(acts.recorded))
	}
}

func TestUpdateUserSkillsChangeRecordsActivity(t *testing.T) {
	users := existingWorker("w-1")
	acts := &fakeActivities{}
	h := handlers.NewUsersHandler(users, acts, &fakeReviewStore{})

	r := setupRouter(http.MethodPut, "/api/user/:id", h.UpdateUser, asUser("w-1", "worker"))
	w := doJSON(t, r, http.MethodPut, "/api/user/w-1", `{"skills":"plumbing, tiling"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}
	if body := decodeBody(t, w); body["skills"] != "plumbing, tiling" {
		t.Errorf("skills = %v, want updated value", body["skills"])
	}
	if len(acts.recorded) != 1 || acts.recorded[0].Type != activity.TypeSkillsUpdated {
		t.Fatalf("recorded = %+v, want one skills_updated entry", acts.recorded)
	}
}

func TestGetUserNotFound(t *testing.T) {
	h := handlers.NewUsersHandler(&fakeUserStore{}, &fakeActivities{}, &fakeReviewStore{})

	r := setupRouter(http.MethodGet, "/api/user/:id", h.GetUser)
	w := doJSON(t, r, http.MethodGet, "/api/user/nope", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeBody(t, w); body["code"] != "not_found" {
		t.Errorf("code = %v, want not_found", body["code"])
	}
}

func TestGetUserProfileIncludesReviewsAndActivity(t *testing.T) {
	users := existingWorker("w-1")
	acts := &fakeActivities{}
	acts.recorded = append(acts.recorded, activity.New("w-1", activity.TypeSkillsUpdated, "Updated skill list", ""))

	reviews := &fakeReviewStore{
		listFn: func(ctx context.Context, userID string) ([]review.WithReviewer, error) {
			return []review.WithReviewer{
				{Review: review.Review{ID: "r-1", ToUserID: userID, Rating: 5}, ReviewerName: "Bogdan"},
			}, nil
		},
	}

	h := handlers.NewUsersHandler(users, acts, reviews)
	r := setupRouter(http.MethodGet, "/api/user/:id", h.GetUser)
	w := doJSON(t, r, http.MethodGet, "/api/user/w-1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["name"] != "Asha Patel" {
		t.Errorf("name = %v, want the profile row inline", body["name"])
	}
	revs, ok := body["reviews"].([]any)
	if !ok || len(revs) != 1 {
		t.Fatalf("reviews = %v, want one embedded review", body["reviews"])
	}
	if acts, ok := body["activities"].([]any); !ok || len(acts) != 1 {
		t.Fatalf("activities = %v, want one embedded entry", body["activities"])
	}
}

func TestGetUserProfileDegradesSideListsToEmpty(t *testing.T) {
	users := existingWorker("w-1")
	reviews := &fakeReviewStore{
		listFn: func(ctx context.Context, userID string) ([]review.WithReviewer, error) {
			return nil, errors.New("reviews table on fire")
		},
	}

	h := handlers.NewUsersHandler(users, &fakeActivities{}, reviews)
	r := setupRouter(http.MethodGet, "/api/user/:id", h.GetUser)
	w := doJSON(t, r, http.MethodGet, "/api/user/w-1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: the profile must survive a side-list failure", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if revs, ok := body["reviews"].([]any); !ok || len(revs) != 0 {
		t.Errorf("reviews = %v, want empty array", body["reviews"])
	}
	if acts, ok := body["activities"].([]any); !ok || len(acts) != 0 {
		t.Errorf("activities = %v, want empty array", body["activities"])
	}
}
