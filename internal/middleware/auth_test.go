package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/api/internal/config"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
	"learnhub/api/internal/security"
)

type stubSessions struct {
	byToken map[string]models.Session
}

func (s stubSessions) FindActiveByToken(_ context.Context, token string) (models.Session, error) {
	sess, ok := s.byToken[token]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return sess, nil
}

type stubUsers struct {
	byID map[string]models.User
}

func (s stubUsers) GetByID(_ context.Context, id string) (models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func authTestConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.JWTTTL = time.Hour
	return cfg
}

func newAuthRouter(cfg *config.AppConfig, users stubUsers, sessions stubSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(cfg, users, sessions), func(c *gin.Context) {
		user := c.MustGet(CtxUser).(models.User)
		c.JSON(http.StatusOK, gin.H{"userId": user.ID})
	})
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuth_ValidTokenWithLiveSession(t *testing.T) {
	cfg := authTestConfig()
	token, err := security.SignAccessToken(cfg.Security.JWTSecret, "user-1", "user", time.Hour)
	require.NoError(t, err)

	router := newAuthRouter(cfg,
		stubUsers{byID: map[string]models.User{"user-1": {ID: "user-1", Role: models.UserRoleUser}}},
		stubSessions{byToken: map[string]models.Session{token: {UserID: "user-1", Token: token, IsActive: true}}},
	)

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	router := newAuthRouter(authTestConfig(), stubUsers{}, stubSessions{})

	rec := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_token", errorCode(t, rec))
}

func TestAuth_BadSignature(t *testing.T) {
	cfg := authTestConfig()
	token, err := security.SignAccessToken("wrong-secret", "user-1", "user", time.Hour)
	require.NoError(t, err)

	rec := doRequest(newAuthRouter(cfg, stubUsers{}, stubSessions{}), token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", errorCode(t, rec))
}

// A signed token whose session row was deactivated must be rejected: the
// signature alone does not keep access alive after logout.
func TestAuth_RevokedSession(t *testing.T) {
	cfg := authTestConfig()
	token, err := security.SignAccessToken(cfg.Security.JWTSecret, "user-1", "user", time.Hour)
	require.NoError(t, err)

	router := newAuthRouter(cfg,
		stubUsers{byID: map[string]models.User{"user-1": {ID: "user-1"}}},
		stubSessions{byToken: map[string]models.Session{}},
	)

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "session_revoked", errorCode(t, rec))
}

func TestAuth_SessionUserMismatch(t *testing.T) {
	cfg := authTestConfig()
	token, err := security.SignAccessToken(cfg.Security.JWTSecret, "user-1", "user", time.Hour)
	require.NoError(t, err)

	router := newAuthRouter(cfg,
		stubUsers{byID: map[string]models.User{"user-1": {ID: "user-1"}}},
		stubSessions{byToken: map[string]models.Session{token: {UserID: "someone-else", Token: token, IsActive: true}}},
	)

	rec := doRequest(router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "session_mismatch", errorCode(t, rec))
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(user models.User) *gin.Engine {
		router := gin.New()
		router.GET("/admin",
			func(c *gin.Context) { c.Set(CtxUser, user) },
			RequireRoles(models.UserRoleAdmin),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
		return router
	}

	rec := httptest.NewRecorder()
	newRouter(models.User{ID: "u1", Role: models.UserRoleAdmin}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(models.User{ID: "u1", Role: models.UserRoleUser}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(user models.User) *gin.Engine {
		router := gin.New()
		router.GET("/users/:id",
			func(c *gin.Context) { c.Set(CtxUser, user) },
			RequireSelfOrAdmin("id"),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
		return router
	}

	// Owner passes.
	rec := httptest.NewRecorder()
	newRouter(models.User{ID: "u1", Role: models.UserRoleUser}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different regular user is refused.
	rec = httptest.NewRecorder()
	newRouter(models.User{ID: "u2", Role: models.UserRoleUser}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins pass for anyone.
	rec = httptest.NewRecorder()
	newRouter(models.User{ID: "root", Role: models.UserRoleAdmin}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/u1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
