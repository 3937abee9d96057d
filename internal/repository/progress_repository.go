package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/api/internal/models"
)

var ErrProgressNotFound = errors.New("progress not found")

type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

const progressColumns = `
	id, user_id, subcategory_id, completed_videos, last_accessed_video,
	last_accessed_at, is_completed, created_at, updated_at
`

func scanProgress(row pgx.Row) (models.Progress, error) {
	var progress models.Progress
	if err := row.Scan(
		&progress.ID,
		&progress.UserID,
		&progress.SubcategoryID,
		&progress.CompletedVideos,
		&progress.LastAccessedVideo,
		&progress.LastAccessedAt,
		&progress.IsCompleted,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Progress{}, ErrProgressNotFound
		}
		return models.Progress{}, err
	}
	return progress, nil
}

// Upsert seeds the (user, subcategory) record. Re-running it, as a retried
// payment approval does, is a no-op thanks to the unique pair index.
func (r *ProgressRepository) Upsert(ctx context.Context, id string, userID string, subcategoryID string) error {
	const query = `
		INSERT INTO progress (id, user_id, subcategory_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, subcategory_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, id, userID, subcategoryID)
	return err
}

func (r *ProgressRepository) Get(ctx context.Context, userID string, subcategoryID string) (models.Progress, error) {
	const query = `
		SELECT ` + progressColumns + `
		FROM progress WHERE user_id = $1 AND subcategory_id = $2
	`
	return scanProgress(r.pool.QueryRow(ctx, query, userID, subcategoryID))
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.Progress, error) {
	const query = `
		SELECT ` + progressColumns + `
		FROM progress WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Progress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, progress)
	}
	return records, rows.Err()
}

// MarkVideoWatched appends the video to the completed set (once) and
// refreshes the last-accessed fields.
func (r *ProgressRepository) MarkVideoWatched(ctx context.Context, userID string, subcategoryID string, videoID string, isCompleted bool) (models.Progress, error) {
	const query = `
		UPDATE progress
		SET completed_videos = CASE
		        WHEN $3 = ANY(completed_videos) THEN completed_videos
		        ELSE array_append(completed_videos, $3)
		    END,
		    last_accessed_video = $3,
		    last_accessed_at = NOW(),
		    is_completed = $4,
		    updated_at = NOW()
		WHERE user_id = $1 AND subcategory_id = $2
		RETURNING ` + progressColumns

	return scanProgress(r.pool.QueryRow(ctx, query, userID, subcategoryID, videoID, isCompleted))
}
