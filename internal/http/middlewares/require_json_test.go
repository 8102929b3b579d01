package middlewares_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/http/middlewares"
)

func TestRequireJSONRejectsOtherContentTypes(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequireJSON())
	r.POST("/thing", okHandler)
	r.GET("/thing", okHandler)

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{name: "post_form_encoded", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
		{name: "post_no_content_type", method: http.MethodPost, contentType: "", wantStatus: http.StatusUnsupportedMediaType},
		{name: "post_json", method: http.MethodPost, contentType: "application/json", wantStatus: http.StatusOK},
		{name: "post_json_with_charset", method: http.MethodPost, contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "get_is_exempt", method: http.MethodGet, contentType: "", wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := hit(r, tc.method, "/thing", tc.contentType, "")
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusUnsupportedMediaType {
				var body map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("body is not JSON: %v", err)
				}
				if body["code"] != "unsupported_media_type" {
					t.Errorf("code = %v, want unsupported_media_type", body["code"])
				}
			}
		})
	}
}
