package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"learnhub/api/internal/cleanup"
	"learnhub/api/internal/ids"
	"learnhub/api/internal/models"
	"learnhub/api/internal/videohost"
)

// ErrNotEntitled means the caller has no approved payment for the content.
var ErrNotEntitled = errors.New("no approved payment for this content")

type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	GetByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context) ([]models.Video, error)
	ListBySubcategory(ctx context.Context, subcategoryID string) ([]models.Video, error)
	Delete(ctx context.Context, id string) error
}

type VideoHost interface {
	CreateUpload(ctx context.Context, title string) (videohost.UploadCredentials, error)
	UploadFile(ctx context.Context, creds videohost.UploadCredentials, filePath string) error
	GetVideo(ctx context.Context, videoID string) (videohost.VideoInfo, error)
	PlaybackOTP(ctx context.Context, videoID string) (videohost.Playback, error)
	Delete(ctx context.Context, videoID string) error
}

type Entitler interface {
	Entitled(ctx context.Context, userID string, itemID string) (bool, error)
}

type VideoService struct {
	videos        VideoStore
	subcategories SubcategoryFinder
	host          VideoHost
	entitlements  Entitler
	cleanup       *cleanup.Queue
	log           zerolog.Logger
}

func NewVideoService(
	videos VideoStore,
	subcategories SubcategoryFinder,
	host VideoHost,
	entitlements Entitler,
	cleanupQueue *cleanup.Queue,
	log zerolog.Logger,
) *VideoService {
	return &VideoService{
		videos:        videos,
		subcategories: subcategories,
		host:          host,
		entitlements:  entitlements,
		cleanup:       cleanupQueue,
		log:           log,
	}
}

type CreateVideoInput struct {
	Title         string
	Description   *string
	SubcategoryID string
	Sequence      int
	FilePath      string
}

// Create pushes the staged file to the video host and records the catalog
// row. The caller owns the staged file and removes it on every exit path.
func (s *VideoService) Create(ctx context.Context, input CreateVideoInput) (models.Video, error) {
	if _, err := s.subcategories.GetByID(ctx, input.SubcategoryID); err != nil {
		return models.Video{}, err
	}

	creds, err := s.host.CreateUpload(ctx, input.Title)
	if err != nil {
		return models.Video{}, err
	}

	if err := s.host.UploadFile(ctx, creds, input.FilePath); err != nil {
		// The half-created remote slot would otherwise leak.
		s.cleanup.Enqueue(ctx, cleanup.KindVideo, creds.VideoID)
		return models.Video{}, err
	}

	duration := 0
	if info, err := s.host.GetVideo(ctx, creds.VideoID); err != nil {
		s.log.Warn().Err(err).Str("remote_id", creds.VideoID).Msg("fetch video metadata failed")
	} else {
		duration = info.DurationSecs
	}

	video := models.Video{
		ID:            ids.New(),
		Title:         input.Title,
		Description:   input.Description,
		RemoteID:      creds.VideoID,
		DurationSecs:  duration,
		Sequence:      input.Sequence,
		SubcategoryID: input.SubcategoryID,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		s.cleanup.Enqueue(ctx, cleanup.KindVideo, creds.VideoID)
		return models.Video{}, err
	}
	return video, nil
}

// Delete removes the catalog row no matter what happens remotely. A
// failed remote destroy is logged and queued for retry; local deletion
// wins over remote consistency.
func (s *VideoService) Delete(ctx context.Context, id string) error {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if video.RemoteID != "" {
		if err := s.host.Delete(ctx, video.RemoteID); err != nil {
			s.log.Warn().Err(err).Str("video_id", id).Str("remote_id", video.RemoteID).
				Msg("remote video deletion failed, queued for retry")
			s.cleanup.Enqueue(ctx, cleanup.KindVideo, video.RemoteID)
		}
	}

	return s.videos.Delete(ctx, id)
}

// Playback issues a short-lived playback token. Non-admin callers need an
// approved payment for the video's subcategory.
func (s *VideoService) Playback(ctx context.Context, videoID string, userID string, isAdmin bool) (videohost.Playback, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return videohost.Playback{}, err
	}

	if !isAdmin {
		entitled, err := s.entitlements.Entitled(ctx, userID, video.SubcategoryID)
		if err != nil {
			return videohost.Playback{}, err
		}
		if !entitled {
			return videohost.Playback{}, ErrNotEntitled
		}
	}

	return s.host.PlaybackOTP(ctx, video.RemoteID)
}
