package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

const videoColumns = `
	id, title, description, remote_id, duration_secs, sequence, subcategory_id, created_at, updated_at
`

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	if err := row.Scan(
		&video.ID,
		&video.Title,
		&video.Description,
		&video.RemoteID,
		&video.DurationSecs,
		&video.Sequence,
		&video.SubcategoryID,
		&video.CreatedAt,
		&video.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrVideoNotFound
		}
		return models.Video{}, err
	}
	return video, nil
}

func (r *VideoRepository) Create(ctx context.Context, video models.Video) error {
	const query = `
		INSERT INTO videos (
			id, title, description, remote_id, duration_secs, sequence, subcategory_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		video.ID,
		video.Title,
		video.Description,
		video.RemoteID,
		video.DurationSecs,
		video.Sequence,
		video.SubcategoryID,
	)
	return err
}

func (r *VideoRepository) GetByID(ctx context.Context, id string) (models.Video, error) {
	const query = `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	return scanVideo(r.pool.QueryRow(ctx, query, id))
}

func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	const query = `SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC`
	return r.queryVideos(ctx, query)
}

func (r *VideoRepository) ListBySubcategory(ctx context.Context, subcategoryID string) ([]models.Video, error) {
	const query = `
		SELECT ` + videoColumns + `
		FROM videos WHERE subcategory_id = $1
		ORDER BY sequence ASC
	`
	return r.queryVideos(ctx, query, subcategoryID)
}

func (r *VideoRepository) CountBySubcategory(ctx context.Context, subcategoryID string) (int, error) {
	const query = `SELECT COUNT(*) FROM videos WHERE subcategory_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, subcategoryID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM videos WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func (r *VideoRepository) queryVideos(ctx context.Context, query string, args ...any) ([]models.Video, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}
