package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/api/internal/config"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
)

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetExpires = nil
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) SetResetToken(_ context.Context, id string, token string, expires time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetToken = &token
	u.ResetExpires = &expires
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) FindByResetToken(_ context.Context, token string) (models.User, error) {
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

// fakeSessionStore enforces the same one-active-session-per-user rule the
// partial unique index provides in Postgres.
type fakeSessionStore struct {
	sessions    map[string]models.Session
	failCreate  error
	createCalls int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]models.Session{}}
}

func (s *fakeSessionStore) Create(_ context.Context, session models.Session) error {
	s.createCalls++
	if s.failCreate != nil {
		return s.failCreate
	}
	for _, existing := range s.sessions {
		if existing.UserID == session.UserID && existing.IsActive {
			return repository.ErrActiveSessionExists
		}
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeSessionStore) FindActiveByToken(_ context.Context, token string) (models.Session, error) {
	for _, sess := range s.sessions {
		if sess.Token == token && sess.IsActive {
			return sess, nil
		}
	}
	return models.Session{}, repository.ErrSessionNotFound
}

func (s *fakeSessionStore) FindActiveByUser(_ context.Context, userID string) (models.Session, error) {
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive {
			return sess, nil
		}
	}
	return models.Session{}, repository.ErrSessionNotFound
}

func (s *fakeSessionStore) DeactivateByToken(_ context.Context, token string) error {
	for id, sess := range s.sessions {
		if sess.Token == token && sess.IsActive {
			sess.IsActive = false
			s.sessions[id] = sess
		}
	}
	return nil
}

func (s *fakeSessionStore) DeactivateAllForUser(_ context.Context, userID string) (int64, error) {
	var count int64
	for id, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive {
			sess.IsActive = false
			s.sessions[id] = sess
			count++
		}
	}
	return count, nil
}

func newTestAuthService(users *fakeUserStore, sessions *fakeSessionStore) *AuthService {
	cfg := &config.AppConfig{}
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.JWTTTL = time.Hour
	cfg.Security.ResetTokenTTL = time.Hour
	return NewAuthService(users, sessions, cfg, zerolog.Nop())
}

func registerTestUser(t *testing.T, svc *AuthService, email string) AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: "strong-password-1",
	})
	require.NoError(t, err)
	return result
}

func TestRegister_AutoLogin(t *testing.T) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	svc := newTestAuthService(users, sessions)

	result := registerTestUser(t, svc, "alice@example.com")

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.UserRoleUser, result.User.Role)

	active, err := sessions.FindActiveByUser(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Token, active.Token)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestAuthService(users, newFakeSessionStore())

	result := registerTestUser(t, svc, "  Alice@Example.COM ")
	assert.Equal(t, "alice@example.com", result.User.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestAuthService(users, newFakeSessionStore())

	registerTestUser(t, svc, "alice@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Imposter",
		Email:    "alice@example.com",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	svc := newTestAuthService(users, sessions)
	reg := registerTestUser(t, svc, "alice@example.com")

	require.NoError(t, svc.Logout(context.Background(), reg.Token))

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "strong-password-1",
	})
	require.NoError(t, err)
	assert.False(t, result.AlreadyActive)
	assert.NotEmpty(t, result.Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestAuthService(users, newFakeSessionStore())
	registerTestUser(t, svc, "alice@example.com")

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_SecondDeviceBlocked(t *testing.T) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	svc := newTestAuthService(users, sessions)
	reg := registerTestUser(t, svc, "alice@example.com")

	// Registration already opened a session; the next login must report
	// it instead of minting a second token.
	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "strong-password-1",
	})
	require.NoError(t, err)
	assert.True(t, result.AlreadyActive)
	assert.Equal(t, reg.User.ID, result.ActiveUserID)
	assert.Empty(t, result.Token)
}

func TestLogin_ConcurrentInsertLosesGracefully(t *testing.T) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	svc := newTestAuthService(users, sessions)
	reg := registerTestUser(t, svc, "alice@example.com")
	require.NoError(t, svc.Logout(context.Background(), reg.Token))

	// Simulate another request winning the active-session insert between
	// the lookup and our own insert.
	sessions.failCreate = repository.ErrActiveSessionExists

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "strong-password-1",
	})
	require.NoError(t, err)
	assert.True(t, result.AlreadyActive)
}

func TestLogout_ThenLoginAgain(t *testing.T) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	svc := newTestAuthService(users, sessions)
	reg := registerTestUser(t, svc, "alice@example.com")

	require.NoError(t, svc.Logout(context.Background(), reg.Token))
	// Logout is idempotent.
	require.NoError(t, svc.Logout(context.Background(), reg.Token))

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "strong-password-1",
	})
	require.NoError(t, err)
	assert.False(t, result.AlreadyActive)
}

func TestLogoutAllDevices(t *testing.T) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	svc := newTestAuthService(users, sessions)
	reg := registerTestUser(t, svc, "alice@example.com")

	revoked, err := svc.LogoutAllDevices(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), revoked)

	_, err = sessions.FindActiveByUser(context.Background(), reg.User.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestResetPassword_Flow(t *testing.T) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	svc := newTestAuthService(users, sessions)
	reg := registerTestUser(t, svc, "alice@example.com")

	token, err := svc.RequestPasswordReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "brand-new-password"))

	// Every device is forced out.
	_, err = sessions.FindActiveByUser(context.Background(), reg.User.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	// Old password is dead, new one works.
	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "strong-password-1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "brand-new-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	// The token is single-use.
	err = svc.ResetPassword(context.Background(), token, "yet-another-password")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestAuthService(users, newFakeSessionStore())
	reg := registerTestUser(t, svc, "alice@example.com")

	token, err := svc.RequestPasswordReset(context.Background(), "alice@example.com")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	u := users.users[reg.User.ID]
	u.ResetExpires = &expired
	users.users[reg.User.ID] = u

	err = svc.ResetPassword(context.Background(), token, "new-password")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	svc := newTestAuthService(newFakeUserStore(), newFakeSessionStore())

	err := svc.ResetPassword(context.Background(), "no-such-token", "new-password")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
