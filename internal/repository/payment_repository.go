package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrDuplicatePayment = errors.New("payment already submitted for this item")
	// ErrPaymentFinalized means the row exists but already reached a
	// terminal status; approved and rejected never transition again.
	ErrPaymentFinalized = errors.New("payment status already finalized")
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `
	id, user_id, item_id, item_type, amount, method, transaction_id, status, created_at, updated_at
`

func scanPayment(row pgx.Row) (models.Payment, error) {
	var payment models.Payment
	if err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.ItemID,
		&payment.ItemType,
		&payment.Amount,
		&payment.Method,
		&payment.TransactionID,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Payment{}, ErrPaymentNotFound
		}
		return models.Payment{}, err
	}
	return payment, nil
}

func (r *PaymentRepository) Create(ctx context.Context, payment models.Payment) error {
	const query = `
		INSERT INTO payments (
			id, user_id, item_id, item_type, amount, method, transaction_id, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.UserID,
		payment.ItemID,
		payment.ItemType,
		payment.Amount,
		payment.Method,
		payment.TransactionID,
		payment.Status,
	)
	if isUniqueViolation(err, "payments_user_item_key") {
		return ErrDuplicatePayment
	}
	return err
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (models.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC`
	return r.queryPayments(ctx, query)
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	const query = `
		SELECT ` + paymentColumns + `
		FROM payments WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.queryPayments(ctx, query, userID)
}

func (r *PaymentRepository) ListByUserTypeStatus(ctx context.Context, userID string, itemType models.ItemType, status models.PaymentStatus) ([]models.Payment, error) {
	const query = `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1 AND item_type = $2 AND status = $3
		ORDER BY created_at DESC
	`
	return r.queryPayments(ctx, query, userID, itemType, status)
}

// SetStatusIfPending performs the pending-only transition atomically; the
// WHERE clause is the state machine.
func (r *PaymentRepository) SetStatusIfPending(ctx context.Context, id string, status models.PaymentStatus) (models.Payment, error) {
	const query = `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + paymentColumns

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, id, status))
	if errors.Is(err, ErrPaymentNotFound) {
		// Distinguish a missing row from a finalized one.
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return models.Payment{}, ErrPaymentFinalized
		}
		return models.Payment{}, ErrPaymentNotFound
	}
	return payment, err
}

// HasApproved answers the entitlement question for protected content.
func (r *PaymentRepository) HasApproved(ctx context.Context, userID string, itemID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE user_id = $1 AND item_id = $2 AND status = 'approved'
		)
	`
	var entitled bool
	if err := r.pool.QueryRow(ctx, query, userID, itemID).Scan(&entitled); err != nil {
		return false, err
	}
	return entitled, nil
}

func (r *PaymentRepository) queryPayments(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
