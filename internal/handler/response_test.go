package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"litrecord/internal/domain"
	"litrecord/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"case not found", domain.ErrCaseNotFound, http.StatusNotFound, "CASE_NOT_FOUND"},
		{"wrapped page not found", fmt.Errorf("loading: %w", domain.ErrPageNotFound), http.StatusNotFound, "PAGE_NOT_FOUND"},
		{"archived", domain.ErrCaseArchived, http.StatusConflict, "CASE_ARCHIVED"},
		{"empty before malformed", fmt.Errorf("%w: %w", domain.ErrMalformedDocument, domain.ErrEmptyDocument), http.StatusUnprocessableEntity, "EMPTY_DOCUMENT"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"storage", domain.ErrStorageFailure, http.StatusServiceUnavailable, "STORAGE_FAILURE"},
		{"invalid mode", domain.ErrInvalidMode, http.StatusBadRequest, "INVALID_MODE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestMapDomainError_TransitionKeepsDetail(t *testing.T) {
	err := fmt.Errorf("%w: position 9 out of range 1..3", domain.ErrInvalidTransition)
	_, _, msg := handler.MapDomainError(err)
	assert.Contains(t, msg, "position 9 out of range")
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	t.Run("all reachable", func(t *testing.T) {
		h := handler.NewHealthHandler(map[string]handler.ReadinessCheck{"database": ok})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)

		h.Readiness(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("dependency down", func(t *testing.T) {
		h := handler.NewHealthHandler(map[string]handler.ReadinessCheck{"artifacts": down})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)

		h.Readiness(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "artifacts not reachable")
		assert.NotContains(t, w.Body.String(), "refused")
	})
}
