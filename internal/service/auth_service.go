package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"learnhub/api/internal/config"
	"learnhub/api/internal/ids"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
	"learnhub/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResetTokenInvalid  = errors.New("reset token invalid or expired")
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	SetResetToken(ctx context.Context, id string, token string, expires time.Time) error
	FindByResetToken(ctx context.Context, token string) (models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	FindActiveByToken(ctx context.Context, token string) (models.Session, error)
	FindActiveByUser(ctx context.Context, userID string) (models.Session, error)
	DeactivateByToken(ctx context.Context, token string) error
	DeactivateAllForUser(ctx context.Context, userID string) (int64, error)
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	AvatarURL *string
	AvatarKey *string
	Device    models.DeviceInfo
}

type AuthResult struct {
	Token string
	User  models.User
}

// LoginResult is a union of two outcomes: a fresh token, or notice that
// another device already holds the single allowed active session. The
// second outcome is not an error; the client decides whether to force
// the other device out.
type LoginResult struct {
	AlreadyActive bool
	ActiveUserID  string
	Token         string
	User          models.User
}

// Register creates the account and logs the new user straight in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         models.UserRoleUser,
		AvatarURL:    input.AvatarURL,
		AvatarKey:    input.AvatarKey,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	token, err := s.openSession(ctx, user, input.Device)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{Token: token, User: user}, nil
}

type LoginInput struct {
	Email    string
	Password string
	Device   models.DeviceInfo
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	// Single-device policy: an existing live session means no new token.
	if _, err := s.sessions.FindActiveByUser(ctx, user.ID); err == nil {
		return LoginResult{AlreadyActive: true, ActiveUserID: user.ID}, nil
	} else if !errors.Is(err, repository.ErrSessionNotFound) {
		return LoginResult{}, err
	}

	token, err := s.openSession(ctx, user, input.Device)
	if err != nil {
		if errors.Is(err, repository.ErrActiveSessionExists) {
			// A concurrent login won the insert; report theirs as active.
			return LoginResult{AlreadyActive: true, ActiveUserID: user.ID}, nil
		}
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) openSession(ctx context.Context, user models.User, device models.DeviceInfo) (string, error) {
	token, err := security.SignAccessToken(s.cfg.Security.JWTSecret, user.ID, string(user.Role), s.cfg.Security.JWTTTL)
	if err != nil {
		return "", err
	}

	session := models.Session{
		ID:       ids.New(),
		UserID:   user.ID,
		Token:    token,
		Device:   device,
		IsActive: true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	return token, nil
}

// Logout deactivates the session bound to the token. Unknown and
// already-inactive tokens are accepted silently.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeactivateByToken(ctx, token)
}

func (s *AuthService) LogoutAllDevices(ctx context.Context, userID string) (int64, error) {
	return s.sessions.DeactivateAllForUser(ctx, userID)
}

func (s *AuthService) ActiveSession(ctx context.Context, userID string) (models.Session, error) {
	return s.sessions.FindActiveByUser(ctx, userID)
}

// RequestPasswordReset issues a reset token for the account. Lookup
// failures bubble up so the handler can decide how much to reveal.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return "", err
	}

	expires := time.Now().Add(s.cfg.Security.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword redeems a reset token and force-logs-out every device.
func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if user.ResetExpires == nil || user.ResetExpires.Before(time.Now()) {
		return ErrResetTokenInvalid
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	if _, err := s.sessions.DeactivateAllForUser(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("logout-all after password reset failed")
	}
	return nil
}
