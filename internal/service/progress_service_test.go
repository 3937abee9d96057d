package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
)

type fakeVideoStore struct {
	videos map[string]models.Video
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: map[string]models.Video{}}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) GetByID(_ context.Context, id string) (models.Video, error) {
	v, ok := s.videos[id]
	if !ok {
		return models.Video{}, repository.ErrVideoNotFound
	}
	return v, nil
}

func (s *fakeVideoStore) List(_ context.Context) ([]models.Video, error) {
	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, v)
	}
	return out, nil
}

func (s *fakeVideoStore) ListBySubcategory(_ context.Context, subcategoryID string) ([]models.Video, error) {
	var out []models.Video
	for _, v := range s.videos {
		if v.SubcategoryID == subcategoryID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	delete(s.videos, id)
	return nil
}

type fakeProgressStore struct {
	records map[string]models.Progress // userID|subcategoryID
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: map[string]models.Progress{}}
}

func progressKey(userID, subcategoryID string) string {
	return userID + "|" + subcategoryID
}

func (s *fakeProgressStore) Upsert(_ context.Context, id string, userID string, subcategoryID string) error {
	key := progressKey(userID, subcategoryID)
	if _, ok := s.records[key]; ok {
		return nil
	}
	s.records[key] = models.Progress{ID: id, UserID: userID, SubcategoryID: subcategoryID}
	return nil
}

func (s *fakeProgressStore) Get(_ context.Context, userID string, subcategoryID string) (models.Progress, error) {
	p, ok := s.records[progressKey(userID, subcategoryID)]
	if !ok {
		return models.Progress{}, repository.ErrProgressNotFound
	}
	return p, nil
}

func (s *fakeProgressStore) ListByUser(_ context.Context, userID string) ([]models.Progress, error) {
	var out []models.Progress
	for _, p := range s.records {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProgressStore) MarkVideoWatched(_ context.Context, userID string, subcategoryID string, videoID string, isCompleted bool) (models.Progress, error) {
	key := progressKey(userID, subcategoryID)
	p, ok := s.records[key]
	if !ok {
		return models.Progress{}, repository.ErrProgressNotFound
	}
	seen := false
	for _, id := range p.CompletedVideos {
		if id == videoID {
			seen = true
			break
		}
	}
	if !seen {
		p.CompletedVideos = append(p.CompletedVideos, videoID)
	}
	p.LastAccessedVideo = &videoID
	p.LastAccessedAt = time.Now()
	p.IsCompleted = isCompleted
	s.records[key] = p
	return p, nil
}

func newProgressFixture() (*ProgressService, *fakeProgressStore, *fakeVideoStore) {
	progress := newFakeProgressStore()
	videos := newFakeVideoStore()
	return NewProgressService(progress, videos), progress, videos
}

func seedCourse(t *testing.T, progress *fakeProgressStore, videos *fakeVideoStore) {
	t.Helper()
	require.NoError(t, videos.Create(context.Background(), models.Video{ID: "vid-1", SubcategoryID: "sub-1", Sequence: 1}))
	require.NoError(t, videos.Create(context.Background(), models.Video{ID: "vid-2", SubcategoryID: "sub-1", Sequence: 2}))
	require.NoError(t, progress.Upsert(context.Background(), "prog-1", "user-1", "sub-1"))
}

func TestMarkWatched_AccumulatesAndCompletes(t *testing.T) {
	svc, progress, videos := newProgressFixture()
	seedCourse(t, progress, videos)
	ctx := context.Background()

	p, err := svc.MarkWatched(ctx, "user-1", "vid-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"vid-1"}, p.CompletedVideos)
	assert.False(t, p.IsCompleted)
	require.NotNil(t, p.LastAccessedVideo)
	assert.Equal(t, "vid-1", *p.LastAccessedVideo)

	p, err = svc.MarkWatched(ctx, "user-1", "vid-2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"vid-1", "vid-2"}, p.CompletedVideos)
	assert.True(t, p.IsCompleted)
}

func TestMarkWatched_Idempotent(t *testing.T) {
	svc, progress, videos := newProgressFixture()
	seedCourse(t, progress, videos)
	ctx := context.Background()

	_, err := svc.MarkWatched(ctx, "user-1", "vid-1")
	require.NoError(t, err)
	p, err := svc.MarkWatched(ctx, "user-1", "vid-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"vid-1"}, p.CompletedVideos)
}

func TestMarkWatched_RequiresSeededProgress(t *testing.T) {
	svc, _, videos := newProgressFixture()
	require.NoError(t, videos.Create(context.Background(), models.Video{ID: "vid-1", SubcategoryID: "sub-1"}))

	// No approved course payment ever seeded a record for this user.
	_, err := svc.MarkWatched(context.Background(), "user-2", "vid-1")
	assert.ErrorIs(t, err, repository.ErrProgressNotFound)
}

func TestMarkWatched_UnknownVideo(t *testing.T) {
	svc, _, _ := newProgressFixture()

	_, err := svc.MarkWatched(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, repository.ErrVideoNotFound)
}
