package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")
)

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `
	id, name, description, image_url, image_key, created_at, updated_at
`

func scanCategory(row pgx.Row) (models.Category, error) {
	var category models.Category
	if err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.ImageURL,
		&category.ImageKey,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Category{}, ErrCategoryNotFound
		}
		return models.Category{}, err
	}
	return category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category models.Category) error {
	const query = `
		INSERT INTO categories (id, name, description, image_url, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.ImageURL,
		category.ImageKey,
	)
	if isUniqueViolation(err, "categories_name_key") {
		return ErrCategoryExists
	}
	return err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (models.Category, error) {
	const query = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.pool.QueryRow(ctx, query, id))
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT ` + categoryColumns + ` FROM categories ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, category models.Category) (models.Category, error) {
	const query = `
		UPDATE categories
		SET name = $2, description = $3, image_url = $4,
		    image_key = COALESCE($5, image_key), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + categoryColumns

	updated, err := scanCategory(r.pool.QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.ImageURL,
		category.ImageKey,
	))
	if isUniqueViolation(err, "categories_name_key") {
		return models.Category{}, ErrCategoryExists
	}
	return updated, err
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM categories WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
