package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
	"learnhub/api/internal/service"
)

type submitPaymentRequest struct {
	ItemID        string  `json:"itemId" binding:"required"`
	ItemType      string  `json:"itemType" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"required"`
	TransactionID string  `json:"transactionId" binding:"required"`
}

// SubmitPayment records the caller's claim of an out-of-band payment. The
// claim always lands pending; only an admin moves it from there.
func (h HandlerSet) SubmitPayment(c *gin.Context) {
	var req submitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.Submit(c.Request.Context(), service.SubmitPaymentInput{
		UserID:        currentUser(c).ID,
		ItemID:        req.ItemID,
		ItemType:      models.ItemType(req.ItemType),
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidItemType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_item_type"})
		case errors.Is(err, service.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
		case errors.Is(err, repository.ErrDuplicatePayment):
			c.JSON(http.StatusConflict, gin.H{"error": "payment_already_submitted"})
		default:
			h.log.Error().Err(err).Msg("submit payment failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "submit_failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, newPaymentResponse(payment))
}

func (h HandlerSet) ListPayments(c *gin.Context) {
	details, err := h.paymentService.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list payments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]paymentResponse, 0, len(details))
	for _, d := range details {
		resp = append(resp, newPaymentDetailResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"payments": resp})
}

type updatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentStatus moves a pending payment to approved or rejected.
// The transition is one-way; a finalized payment is immutable.
func (h HandlerSet) UpdatePaymentStatus(c *gin.Context) {
	var req updatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.SetStatus(
		c.Request.Context(), c.Param("id"), models.PaymentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		case errors.Is(err, repository.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment_not_found"})
		case errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "payment_already_finalized"})
		default:
			h.log.Error().Err(err).Str("payment_id", c.Param("id")).Msg("update payment status failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, newPaymentResponse(payment))
}
