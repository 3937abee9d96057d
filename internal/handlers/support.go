package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/ids"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
)

type createSupportRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (h HandlerSet) CreateSupport(c *gin.Context) {
	var req createSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket := models.Support{
		ID:      ids.New(),
		UserID:  currentUser(c).ID,
		Subject: req.Subject,
		Message: req.Message,
		Status:  models.SupportStatusOpen,
	}

	if err := h.support.Create(c.Request.Context(), ticket); err != nil {
		h.log.Error().Err(err).Msg("create support request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	c.JSON(http.StatusCreated, newSupportResponse(ticket))
}

func (h HandlerSet) ListSupport(c *gin.Context) {
	tickets, err := h.support.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list support requests failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]supportResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, newSupportResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"supportRequests": resp})
}

func (h HandlerSet) ListUserSupport(c *gin.Context) {
	userID := c.Param("id")

	tickets, err := h.support.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list user support requests failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]supportResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, newSupportResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"supportRequests": resp})
}

type updateSupportStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open resolved"`
}

func (h HandlerSet) UpdateSupportStatus(c *gin.Context) {
	var req updateSupportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.support.UpdateStatus(
		c.Request.Context(), c.Param("id"), models.SupportStatus(req.Status))
	if err != nil {
		if errors.Is(err, repository.ErrSupportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "support_request_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("update support status failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}

	c.JSON(http.StatusOK, newSupportResponse(ticket))
}
