package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupProfileRouter wires patchProfile behind a stub auth step. Validation
// runs before any DB access, so rejection paths work with a nil pool.
func setupProfileRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{}
	router := gin.New()
	router.PATCH("/api/profile", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, h.patchProfile)
	return router
}

func patchProfileRequestDo(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("PATCH", "/api/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestPatchProfile_RejectsBadEnums: unknown gender/age-range/unit values must
// be rejected up front — stored, they would silently neutralize every future
// target calculation.
func TestPatchProfile_RejectsBadEnums(t *testing.T) {
	router := setupProfileRouter()

	cases := []struct {
		name string
		body string
	}{
		{"unknown gender", `{"gender":"not-an-option"}`},
		{"unknown age range", `{"age_range":"90-100"}`},
		{"unknown unit", `{"weight_unit":"stone"}`},
		{"zero weight", `{"weight":0}`},
		{"absurd weight", `{"weight":2000}`},
		{"empty body", `{}`},
		{"malformed", `{"gender":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := patchProfileRequestDo(router, tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
