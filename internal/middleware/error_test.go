package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reqtrail/reqtrail/internal/pkg/apperrors"
)

func serveWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/boom", func(c *gin.Context) {
		c.Error(err)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return rec
}

func TestErrorHandlerAppError(t *testing.T) {
	rec := serveWithError(t, apperrors.NewInvalidRequest("bad page"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["code"] != string(apperrors.ErrInvalidRequest) {
		t.Fatalf("unexpected code %q", body["code"])
	}
	if body["message"] != "bad page" {
		t.Fatalf("unexpected message %q", body["message"])
	}
}

func TestErrorHandlerWrapsUnknownError(t *testing.T) {
	rec := serveWithError(t, errors.New("disk on fire"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["code"] != string(apperrors.ErrInternal) {
		t.Fatalf("unexpected code %q", body["code"])
	}
	if body["message"] != "disk on fire" {
		t.Fatalf("unexpected message %q", body["message"])
	}
}
