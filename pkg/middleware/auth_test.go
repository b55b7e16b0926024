package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/auth"
	"github.com/jordanlanch/trainhub/pkg/cache"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key"

func newTestBlacklist(t *testing.T) *auth.TokenBlacklist {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return auth.NewTokenBlacklist(client)
}

func authRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func TestUserAuthValidToken(t *testing.T) {
	e := echo.New()
	blacklist := newTestBlacklist(t)

	userID := uuid.New()
	token, err := auth.GenerateJWT(userID, "user@example.com", models.RoleUser, testJWTSecret, 1)
	require.NoError(t, err)

	handler := UserAuth(testJWTSecret, blacklist)(func(c echo.Context) error {
		assert.Equal(t, userID, c.Get(ContextUserID))
		assert.Equal(t, "user@example.com", c.Get(ContextEmail))
		assert.Equal(t, models.RoleUser, c.Get(ContextRole))
		assert.Equal(t, token, c.Get(ContextToken))
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(authRequest(token), rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserAuthMissingHeader(t *testing.T) {
	e := echo.New()
	handler := UserAuth(testJWTSecret, newTestBlacklist(t))(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(authRequest(""), rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestUserAuthMalformedHeader(t *testing.T) {
	e := echo.New()
	handler := UserAuth(testJWTSecret, newTestBlacklist(t))(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserAuthInvalidToken(t *testing.T) {
	e := echo.New()
	handler := UserAuth(testJWTSecret, newTestBlacklist(t))(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(authRequest("not.a.jwt"), rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserAuthWrongSecret(t *testing.T) {
	e := echo.New()
	blacklist := newTestBlacklist(t)

	token, err := auth.GenerateJWT(uuid.New(), "user@example.com", models.RoleUser, "other-secret", 1)
	require.NoError(t, err)

	handler := UserAuth(testJWTSecret, blacklist)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(authRequest(token), rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserAuthRevokedToken(t *testing.T) {
	e := echo.New()
	blacklist := newTestBlacklist(t)

	token, err := auth.GenerateJWT(uuid.New(), "user@example.com", models.RoleUser, testJWTSecret, 1)
	require.NoError(t, err)

	require.NoError(t, blacklist.Add(context.Background(), token, time.Hour))

	handler := UserAuth(testJWTSecret, blacklist)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(authRequest(token), rec)

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()
	handler := RequireAdmin()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	t.Run("admin allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin", nil), rec)
		c.Set(ContextRole, models.RoleAdmin)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("regular user forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin", nil), rec)
		c.Set(ContextRole, models.RoleUser)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin", nil), rec)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
