package middlewares_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func hit(r *gin.Engine, method, path, contentType, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.GET("/ping", rl.Middleware(middlewares.KeyByIP), okHandler)

	for i := 0; i < 2; i++ {
		if w := hit(r, http.MethodGet, "/ping", "", "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	w := hit(r, http.MethodGet, "/ping", "", "10.0.0.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing on a limited response")
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["code"] != "rate_limited" {
		t.Errorf("code = %v, want rate_limited", body["code"])
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute)

	r := gin.New()
	r.GET("/ping", rl.Middleware(middlewares.KeyByIP), okHandler)

	if w := hit(r, http.MethodGet, "/ping", "", "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("first client: status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := hit(r, http.MethodGet, "/ping", "", "10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Fatalf("second client must not share the first client's bucket: status = %d", w.Code)
	}
	if w := hit(r, http.MethodGet, "/ping", "", "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client again: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}
