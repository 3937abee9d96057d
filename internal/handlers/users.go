package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
)

func (h HandlerSet) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h HandlerSet) GetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

type updateUserRequest struct {
	Name string `form:"name" json:"name" binding:"required"`
}

// UpdateUser updates the profile name and, when the multipart form carries
// one, replaces the avatar. The previous avatar object is destroyed after
// the profile row commits.
func (h HandlerSet) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var req updateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	avatarURL, avatarKey := existing.AvatarURL, existing.AvatarKey
	var replacedKey *string
	if header, err := c.FormFile("avatar"); err == nil {
		url, key, err := h.uploadImage(c, header, "avatars")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "avatar_upload_failed"})
			return
		}
		replacedKey = existing.AvatarKey
		avatarURL, avatarKey = &url, &key
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), id, req.Name, avatarURL, avatarKey)
	if err != nil {
		h.removeObject(c, avatarKey)
		h.log.Error().Err(err).Msg("update user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}
	h.removeObject(c, replacedKey)

	c.JSON(http.StatusOK, newUserResponse(updated))
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.log.Error().Err(err).Str("user_id", id).Msg("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	h.removeObject(c, user.AvatarKey)

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// GetUserCourses returns the user's approved course payments with the
// full catalog tree resolved, plus the matching progress records.
func (h HandlerSet) GetUserCourses(c *gin.Context) {
	userID := c.Param("id")
	ctx := c.Request.Context()

	details, err := h.paymentService.ListByUser(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list user courses failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	courses := make([]paymentResponse, 0)
	for _, d := range details {
		if d.Payment.ItemType != models.ItemTypeCourse || d.Payment.Status != models.PaymentStatusApproved {
			continue
		}
		courses = append(courses, newPaymentDetailResponse(d))
	}

	progress, err := h.progress.ListByUser(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list user progress failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	progressResp := make([]progressResponse, 0, len(progress))
	for _, p := range progress {
		progressResp = append(progressResp, newProgressResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"courses":  courses,
		"progress": progressResp,
	})
}

func (h HandlerSet) GetUserPDFs(c *gin.Context) {
	userID := c.Param("id")

	pdfs, err := h.paymentService.ApprovedPDFs(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list user pdfs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]pdfResponse, 0, len(pdfs))
	for _, p := range pdfs {
		resp = append(resp, newPDFResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"pdfs": resp})
}

func (h HandlerSet) GetUserPayments(c *gin.Context) {
	userID := c.Param("id")

	details, err := h.paymentService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list user payments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]paymentResponse, 0, len(details))
	for _, d := range details {
		resp = append(resp, newPaymentDetailResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"payments": resp})
}
