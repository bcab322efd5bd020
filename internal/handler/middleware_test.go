package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyat/backend/internal/config"
	"github.com/nyat/backend/internal/service"
)

func newProtectedRouter(t *testing.T, tokenCfg config.TokenConfig) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService, err := service.NewAuthService(newMemStore(), service.NewPasswordHasher(1), tokenCfg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(AuthMiddleware(authService))
	r.GET("/whoami", func(c *gin.Context) {
		user := GetAuthUser(c)
		c.String(http.StatusOK, strconv.FormatInt(user.ID, 10))
	})
	return r, authService
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r, svc := newProtectedRouter(t, config.TokenConfig{Secret: "test-secret", TTL: "1h"})

	token, err := svc.IssueToken(7)
	require.NoError(t, err)

	rec := get(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Body.String())
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	r, _ := newProtectedRouter(t, config.TokenConfig{Secret: "test-secret", TTL: "1h"})

	rec := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareWrongScheme(t *testing.T) {
	r, _ := newProtectedRouter(t, config.TokenConfig{Secret: "test-secret", TTL: "1h"})

	rec := get(r, "Token abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	r, _ := newProtectedRouter(t, config.TokenConfig{Secret: "test-secret", TTL: "1h"})

	rec := get(r, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	r, svc := newProtectedRouter(t, config.TokenConfig{Secret: "test-secret", TTL: "0s"})

	token, err := svc.IssueToken(7)
	require.NoError(t, err)

	rec := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// The expiry reason must not leak to the caller.
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}
