package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litrecord/internal/auth"
	"litrecord/internal/config"
	"litrecord/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Auth(tokens))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetSubject(c))
	})
	return r
}

func TestAuth_Disabled(t *testing.T) {
	r := newAuthRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newAuthRouter(auth.NewTokenService(config.JWTConfig{Secret: "s"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAuth_InvalidToken(t *testing.T) {
	r := newAuthRouter(auth.NewTokenService(config.JWTConfig{Secret: "s"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := auth.NewTokenService(config.JWTConfig{Secret: "s", Issuer: "litrecord"})
	r := newAuthRouter(tokens)

	token, err := tokens.Issue("paralegal-1", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paralegal-1", w.Body.String())
}
