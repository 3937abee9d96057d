package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrActiveSessionExists is raised by the partial unique index when a
	// second login races past the application-level check.
	ErrActiveSessionExists = errors.New("active session already exists")
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `
	id, user_id, token, user_agent, ip_address, browser, os, is_active, created_at, updated_at
`

func scanSession(row pgx.Row) (models.Session, error) {
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.Device.UserAgent,
		&session.Device.IPAddress,
		&session.Device.Browser,
		&session.Device.OS,
		&session.IsActive,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO sessions (
			id, user_id, token, user_agent, ip_address, browser, os, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.Device.UserAgent,
		session.Device.IPAddress,
		session.Device.Browser,
		session.Device.OS,
	)
	if isUniqueViolation(err, "sessions_one_active_per_user") {
		return ErrActiveSessionExists
	}
	return err
}

// FindActiveByToken is the liveness half of request authentication: a
// token whose session row is deactivated must not authenticate even while
// its signature still verifies.
func (r *SessionRepository) FindActiveByToken(ctx context.Context, token string) (models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE token = $1 AND is_active`
	return scanSession(r.pool.QueryRow(ctx, query, token))
}

func (r *SessionRepository) FindActiveByUser(ctx context.Context, userID string) (models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 AND is_active`
	return scanSession(r.pool.QueryRow(ctx, query, userID))
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// DeactivateByToken is idempotent: logging out an already-deactivated or
// unknown token is a no-op, not an error.
func (r *SessionRepository) DeactivateByToken(ctx context.Context, token string) error {
	const query = `
		UPDATE sessions SET is_active = FALSE, updated_at = NOW()
		WHERE token = $1 AND is_active
	`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

func (r *SessionRepository) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	const query = `
		UPDATE sessions SET is_active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_active
	`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
