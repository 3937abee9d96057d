package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var ErrPDFNotFound = errors.New("pdf not found")

type PDFRepository struct {
	pool *pgxpool.Pool
}

func NewPDFRepository(pool *pgxpool.Pool) *PDFRepository {
	return &PDFRepository{pool: pool}
}

const pdfColumns = `
	id, title, description, category_id, subcategory_id, price, file_url,
	file_size, object_key, downloads, created_at, updated_at
`

func scanPDF(row pgx.Row) (models.PDF, error) {
	var pdf models.PDF
	if err := row.Scan(
		&pdf.ID,
		&pdf.Title,
		&pdf.Description,
		&pdf.CategoryID,
		&pdf.SubcategoryID,
		&pdf.Price,
		&pdf.FileURL,
		&pdf.FileSize,
		&pdf.ObjectKey,
		&pdf.Downloads,
		&pdf.CreatedAt,
		&pdf.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PDF{}, ErrPDFNotFound
		}
		return models.PDF{}, err
	}
	return pdf, nil
}

func (r *PDFRepository) Create(ctx context.Context, pdf models.PDF) error {
	const query = `
		INSERT INTO pdfs (
			id, title, description, category_id, subcategory_id, price,
			file_url, file_size, object_key, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		pdf.ID,
		pdf.Title,
		pdf.Description,
		pdf.CategoryID,
		pdf.SubcategoryID,
		pdf.Price,
		pdf.FileURL,
		pdf.FileSize,
		pdf.ObjectKey,
	)
	return err
}

func (r *PDFRepository) GetByID(ctx context.Context, id string) (models.PDF, error) {
	const query = `SELECT ` + pdfColumns + ` FROM pdfs WHERE id = $1`
	return scanPDF(r.pool.QueryRow(ctx, query, id))
}

func (r *PDFRepository) List(ctx context.Context) ([]models.PDF, error) {
	const query = `SELECT ` + pdfColumns + ` FROM pdfs ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pdfs []models.PDF
	for rows.Next() {
		pdf, err := scanPDF(rows)
		if err != nil {
			return nil, err
		}
		pdfs = append(pdfs, pdf)
	}
	return pdfs, rows.Err()
}

func (r *PDFRepository) Update(ctx context.Context, pdf models.PDF) (models.PDF, error) {
	const query = `
		UPDATE pdfs
		SET title = $2, description = $3, category_id = $4, subcategory_id = $5,
		    price = $6, file_url = $7, file_size = $8, object_key = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + pdfColumns

	return scanPDF(r.pool.QueryRow(ctx, query,
		pdf.ID,
		pdf.Title,
		pdf.Description,
		pdf.CategoryID,
		pdf.SubcategoryID,
		pdf.Price,
		pdf.FileURL,
		pdf.FileSize,
		pdf.ObjectKey,
	))
}

func (r *PDFRepository) IncrementDownloads(ctx context.Context, id string) error {
	const query = `UPDATE pdfs SET downloads = downloads + 1, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PDFRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM pdfs WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPDFNotFound
	}
	return nil
}
