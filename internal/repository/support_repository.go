package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var ErrSupportNotFound = errors.New("support request not found")

type SupportRepository struct {
	pool *pgxpool.Pool
}

func NewSupportRepository(pool *pgxpool.Pool) *SupportRepository {
	return &SupportRepository{pool: pool}
}

const supportColumns = `
	id, user_id, subject, message, status, created_at, updated_at
`

func scanSupport(row pgx.Row) (models.Support, error) {
	var ticket models.Support
	if err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.Subject,
		&ticket.Message,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Support{}, ErrSupportNotFound
		}
		return models.Support{}, err
	}
	return ticket, nil
}

func (r *SupportRepository) Create(ctx context.Context, ticket models.Support) error {
	const query = `
		INSERT INTO support_requests (id, user_id, subject, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.UserID,
		ticket.Subject,
		ticket.Message,
		ticket.Status,
	)
	return err
}

func (r *SupportRepository) List(ctx context.Context) ([]models.Support, error) {
	const query = `SELECT ` + supportColumns + ` FROM support_requests ORDER BY created_at DESC`
	return r.querySupport(ctx, query)
}

func (r *SupportRepository) ListByUser(ctx context.Context, userID string) ([]models.Support, error) {
	const query = `
		SELECT ` + supportColumns + `
		FROM support_requests WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.querySupport(ctx, query, userID)
}

func (r *SupportRepository) UpdateStatus(ctx context.Context, id string, status models.SupportStatus) (models.Support, error) {
	const query = `
		UPDATE support_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + supportColumns

	return scanSupport(r.pool.QueryRow(ctx, query, id, status))
}

func (r *SupportRepository) querySupport(ctx context.Context, query string, args ...any) ([]models.Support, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Support
	for rows.Next() {
		ticket, err := scanSupport(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
