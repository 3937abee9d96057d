package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/api/internal/config"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
	"learnhub/api/internal/service"
)

type stubUserStore struct {
	users map[string]models.User
}

func (s *stubUserStore) Create(_ context.Context, user models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	u := s.users[id]
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

func (s *stubUserStore) SetResetToken(_ context.Context, id string, token string, expires time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetToken = &token
	u.ResetExpires = &expires
	s.users[id] = u
	return nil
}

func (s *stubUserStore) FindByResetToken(_ context.Context, token string) (models.User, error) {
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

type stubSessionStore struct{}

func (stubSessionStore) Create(context.Context, models.Session) error { return nil }
func (stubSessionStore) FindActiveByToken(context.Context, string) (models.Session, error) {
	return models.Session{}, repository.ErrSessionNotFound
}
func (stubSessionStore) FindActiveByUser(context.Context, string) (models.Session, error) {
	return models.Session{}, repository.ErrSessionNotFound
}
func (stubSessionStore) DeactivateByToken(context.Context, string) error { return nil }
func (stubSessionStore) DeactivateAllForUser(context.Context, string) (int64, error) {
	return 0, nil
}

func newForgotPasswordRouter(users *stubUserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{}
	cfg.Security.ResetTokenTTL = time.Hour
	auth := service.NewAuthService(users, stubSessionStore{}, cfg, zerolog.Nop())

	h := HandlerSet{log: zerolog.Nop(), authService: auth}
	router := gin.New()
	router.POST("/forgot-password", h.ForgotPassword)
	return router
}

func postForgotPassword(t *testing.T, router *gin.Engine, email string) *httptest.ResponseRecorder {
	t.Helper()
	body := strings.NewReader(`{"email":"` + email + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/forgot-password", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestForgotPassword_ResponseDoesNotRevealAccounts(t *testing.T) {
	users := &stubUserStore{users: map[string]models.User{
		"u1": {ID: "u1", Email: "known@example.com"},
	}}
	router := newForgotPasswordRouter(users)

	known := postForgotPassword(t, router, "known@example.com")
	unknown := postForgotPassword(t, router, "nobody@example.com")

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, unknown.Body.String(), known.Body.String())
	assert.NotContains(t, known.Body.String(), "resetToken")
}

func TestForgotPassword_TokenStoredForDelivery(t *testing.T) {
	users := &stubUserStore{users: map[string]models.User{
		"u1": {ID: "u1", Email: "known@example.com"},
	}}
	router := newForgotPasswordRouter(users)

	rec := postForgotPassword(t, router, "known@example.com")
	require.Equal(t, http.StatusOK, rec.Code)

	stored := users.users["u1"]
	require.NotNil(t, stored.ResetToken)
	assert.NotEmpty(t, *stored.ResetToken)
}
