package service

import (
	"context"

	"learnhub/api/internal/models"
)

type ProgressStore interface {
	Upsert(ctx context.Context, id string, userID string, subcategoryID string) error
	Get(ctx context.Context, userID string, subcategoryID string) (models.Progress, error)
	ListByUser(ctx context.Context, userID string) ([]models.Progress, error)
	MarkVideoWatched(ctx context.Context, userID string, subcategoryID string, videoID string, isCompleted bool) (models.Progress, error)
}

// ProgressService tracks per-(user, subcategory) course completion. The
// record itself is seeded by payment approval; this service only reads
// and advances it.
type ProgressService struct {
	progress ProgressStore
	videos   VideoStore
}

func NewProgressService(progress ProgressStore, videos VideoStore) *ProgressService {
	return &ProgressService{
		progress: progress,
		videos:   videos,
	}
}

func (s *ProgressService) ListByUser(ctx context.Context, userID string) ([]models.Progress, error) {
	return s.progress.ListByUser(ctx, userID)
}

// MarkWatched records a completed video. A missing progress record means
// the user never had a course approval for the subcategory; the not-found
// bubbles up untouched.
func (s *ProgressService) MarkWatched(ctx context.Context, userID string, videoID string) (models.Progress, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return models.Progress{}, err
	}

	current, err := s.progress.Get(ctx, userID, video.SubcategoryID)
	if err != nil {
		return models.Progress{}, err
	}

	all, err := s.videos.ListBySubcategory(ctx, video.SubcategoryID)
	if err != nil {
		return models.Progress{}, err
	}

	completed := make(map[string]bool, len(current.CompletedVideos)+1)
	for _, id := range current.CompletedVideos {
		completed[id] = true
	}
	completed[videoID] = true

	isCompleted := len(all) > 0
	for _, v := range all {
		if !completed[v.ID] {
			isCompleted = false
			break
		}
	}

	return s.progress.MarkVideoWatched(ctx, userID, video.SubcategoryID, videoID, isCompleted)
}
