package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var ErrBookNotFound = errors.New("book not found")

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

const bookColumns = `
	id, name, description, price, image_url, image_key, created_at, updated_at
`

func scanBook(row pgx.Row) (models.Book, error) {
	var book models.Book
	if err := row.Scan(
		&book.ID,
		&book.Name,
		&book.Description,
		&book.Price,
		&book.ImageURL,
		&book.ImageKey,
		&book.CreatedAt,
		&book.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Book{}, ErrBookNotFound
		}
		return models.Book{}, err
	}
	return book, nil
}

func (r *BookRepository) Create(ctx context.Context, book models.Book) error {
	const query = `
		INSERT INTO books (id, name, description, price, image_url, image_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Name,
		book.Description,
		book.Price,
		book.ImageURL,
		book.ImageKey,
	)
	return err
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (models.Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(r.pool.QueryRow(ctx, query, id))
}

func (r *BookRepository) List(ctx context.Context) ([]models.Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (r *BookRepository) Update(ctx context.Context, book models.Book) (models.Book, error) {
	const query = `
		UPDATE books
		SET name = $2, description = $3, price = $4,
		    image_url = COALESCE(NULLIF($5, ''), image_url),
		    image_key = COALESCE($6, image_key),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookColumns

	return scanBook(r.pool.QueryRow(ctx, query,
		book.ID,
		book.Name,
		book.Description,
		book.Price,
		book.ImageURL,
		book.ImageKey,
	))
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM books WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}
