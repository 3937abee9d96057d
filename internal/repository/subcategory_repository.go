package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var (
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	ErrSubcategoryExists   = errors.New("subcategory already exists in this category")
)

type SubcategoryRepository struct {
	pool *pgxpool.Pool
}

func NewSubcategoryRepository(pool *pgxpool.Pool) *SubcategoryRepository {
	return &SubcategoryRepository{pool: pool}
}

const subcategoryColumns = `
	id, name, description, category_id, created_at, updated_at
`

func scanSubcategory(row pgx.Row) (models.Subcategory, error) {
	var subcategory models.Subcategory
	if err := row.Scan(
		&subcategory.ID,
		&subcategory.Name,
		&subcategory.Description,
		&subcategory.CategoryID,
		&subcategory.CreatedAt,
		&subcategory.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subcategory{}, ErrSubcategoryNotFound
		}
		return models.Subcategory{}, err
	}
	return subcategory, nil
}

func (r *SubcategoryRepository) Create(ctx context.Context, subcategory models.Subcategory) error {
	const query = `
		INSERT INTO subcategories (id, name, description, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		subcategory.ID,
		subcategory.Name,
		subcategory.Description,
		subcategory.CategoryID,
	)
	if isUniqueViolation(err, "subcategories_name_category_key") {
		return ErrSubcategoryExists
	}
	return err
}

func (r *SubcategoryRepository) GetByID(ctx context.Context, id string) (models.Subcategory, error) {
	const query = `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE id = $1`
	return scanSubcategory(r.pool.QueryRow(ctx, query, id))
}

func (r *SubcategoryRepository) List(ctx context.Context) ([]models.Subcategory, error) {
	const query = `SELECT ` + subcategoryColumns + ` FROM subcategories ORDER BY created_at DESC`
	return r.querySubcategories(ctx, query)
}

func (r *SubcategoryRepository) ListByCategory(ctx context.Context, categoryID string) ([]models.Subcategory, error) {
	const query = `
		SELECT ` + subcategoryColumns + `
		FROM subcategories WHERE category_id = $1
		ORDER BY created_at ASC
	`
	return r.querySubcategories(ctx, query, categoryID)
}

func (r *SubcategoryRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	const query = `SELECT COUNT(*) FROM subcategories WHERE category_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsDuplicate backs the duplicate-check endpoint; excludeID skips the
// row being edited during an update.
func (r *SubcategoryRepository) ExistsDuplicate(ctx context.Context, name string, categoryID string, excludeID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM subcategories
			WHERE name = $1 AND category_id = $2 AND id != $3
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, name, categoryID, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SubcategoryRepository) Update(ctx context.Context, subcategory models.Subcategory) (models.Subcategory, error) {
	const query = `
		UPDATE subcategories
		SET name = $2, description = $3, category_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + subcategoryColumns

	updated, err := scanSubcategory(r.pool.QueryRow(ctx, query,
		subcategory.ID,
		subcategory.Name,
		subcategory.Description,
		subcategory.CategoryID,
	))
	if isUniqueViolation(err, "subcategories_name_category_key") {
		return models.Subcategory{}, ErrSubcategoryExists
	}
	return updated, err
}

func (r *SubcategoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM subcategories WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSubcategoryNotFound
	}
	return nil
}

func (r *SubcategoryRepository) querySubcategories(ctx context.Context, query string, args ...any) ([]models.Subcategory, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subcategories []models.Subcategory
	for rows.Next() {
		subcategory, err := scanSubcategory(rows)
		if err != nil {
			return nil, err
		}
		subcategories = append(subcategories, subcategory)
	}
	return subcategories, rows.Err()
}
