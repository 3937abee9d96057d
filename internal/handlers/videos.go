package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/ids"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
	"learnhub/api/internal/service"
	"learnhub/api/internal/videohost"
)

func (h HandlerSet) ListVideos(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		videos []models.Video
		err    error
	)
	if subcategoryID := c.Query("subcategoryId"); subcategoryID != "" {
		videos, err = h.videos.ListBySubcategory(ctx, subcategoryID)
	} else {
		videos, err = h.videos.List(ctx)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("list videos failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		resp = append(resp, newVideoResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"videos": resp})
}

type createVideoRequest struct {
	Title         string `form:"title" binding:"required"`
	Description   string `form:"description"`
	SubcategoryID string `form:"subcategoryId" binding:"required"`
	Sequence      int    `form:"sequence"`
}

// CreateVideo stages the uploaded file on local disk, pushes it to the
// DRM host and records the catalog row. The staged copy is removed on
// every exit path.
func (h HandlerSet) CreateVideo(c *gin.Context) {
	var req createVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}

	stagedPath := filepath.Join(os.TempDir(), "video-upload-"+ids.New())
	if err := c.SaveUploadedFile(header, stagedPath); err != nil {
		h.log.Error().Err(err).Msg("stage video file failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "staging_failed"})
		return
	}
	defer os.Remove(stagedPath)

	input := service.CreateVideoInput{
		Title:         req.Title,
		SubcategoryID: req.SubcategoryID,
		Sequence:      req.Sequence,
		FilePath:      stagedPath,
	}
	if req.Description != "" {
		input.Description = &req.Description
	}

	video, err := h.videoService.Create(c.Request.Context(), input)
	if err != nil {
		h.respondVideoHostError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newVideoResponse(video))
}

// respondVideoHostError translates the host client's typed failures:
// exhausted upload quota, a rejected file, or the remote being down.
func (h HandlerSet) respondVideoHostError(c *gin.Context, err error) {
	var (
		quotaErr  *videohost.QuotaError
		uploadErr *videohost.UploadError
		remoteErr *videohost.RemoteError
	)
	switch {
	case errors.Is(err, repository.ErrSubcategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "subcategory_not_found"})
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusForbidden, gin.H{"error": "video_quota_exceeded"})
	case errors.As(err, &uploadErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "video_upload_rejected"})
	case errors.As(err, &remoteErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "video_host_unavailable"})
	default:
		h.log.Error().Err(err).Msg("video operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "video_operation_failed"})
	}
}

// DeleteVideo removes the catalog row; the remote asset is destroyed
// best-effort and retried from the cleanup queue if the host is down.
func (h HandlerSet) DeleteVideo(c *gin.Context) {
	id := c.Param("id")

	if err := h.videoService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video_not_found"})
			return
		}
		h.log.Error().Err(err).Str("video_id", id).Msg("delete video failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "video deleted"})
}

// VideoPlayback returns a short-lived DRM OTP. Non-admins must hold an
// approved course payment for the video's subcategory.
func (h HandlerSet) VideoPlayback(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	playback, err := h.videoService.Playback(c.Request.Context(), id, user.ID, isAdmin(user))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVideoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "video_not_found"})
		case errors.Is(err, service.ErrNotEntitled):
			c.JSON(http.StatusForbidden, gin.H{"error": "not_entitled"})
		default:
			h.respondVideoHostError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"otp":          playback.OTP,
		"playbackInfo": playback.PlaybackInfo,
	})
}

// MarkVideoWatched appends the video to the caller's completion set for
// the course. Requires a seeded progress record, i.e. an approved course
// payment.
func (h HandlerSet) MarkVideoWatched(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	progress, err := h.progressService.MarkWatched(c.Request.Context(), user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVideoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "video_not_found"})
		case errors.Is(err, repository.ErrProgressNotFound):
			c.JSON(http.StatusForbidden, gin.H{"error": "not_entitled"})
		default:
			h.log.Error().Err(err).Str("video_id", id).Msg("mark watched failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, newProgressResponse(progress))
}
