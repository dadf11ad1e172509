package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sardorbek/atmos-paylink/internal/domain"
	"github.com/sardorbek/atmos-paylink/internal/dto"
	"github.com/sardorbek/atmos-paylink/internal/metrics"
	"github.com/sardorbek/atmos-paylink/internal/service"
	"github.com/sardorbek/atmos-paylink/pkg/logger"
)

// webhookSuccessMessage is the localized body Atmos expects on success
const webhookSuccessMessage = "Успешно"

// WebhookHandler handles Atmos payment notifications
type WebhookHandler struct {
	paylinkService service.PaylinkService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(paylinkService service.PaylinkService) *WebhookHandler {
	return &WebhookHandler{
		paylinkService: paylinkService,
	}
}

// HandleAtmosWebhook handles POST /payments/atmos/webhook/
//
// Response contract is fixed by the gateway: 200 {status:1} on success,
// 400 {status:0} on validation/signature/lookup failure, 500 {status:0}
// with a generic message on anything unexpected.
func (h *WebhookHandler) HandleAtmosWebhook(c *gin.Context) {
	log := logger.Get()
	start := time.Now()

	metrics.RecordWebhookReceived(c.Request.Context())

	var payload dto.WebhookNotification
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Error(fmt.Sprintf("Invalid webhook data: %v", err))
		metrics.RecordWebhookFailed(c.Request.Context(), "validation")
		c.JSON(http.StatusBadRequest, dto.WebhookResponse{
			Status:  0,
			Message: "Invalid webhook data",
		})
		return
	}

	log.Info(fmt.Sprintf("Webhook received: invoice=%s, transaction_id=%d, amount=%d",
		payload.Invoice, payload.TransactionID, payload.Amount))

	tx, err := h.paylinkService.HandleWebhook(c.Request.Context(), &payload)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSignature):
			log.Error(fmt.Sprintf("Invalid webhook signature: invoice=%s", payload.Invoice))
			metrics.RecordWebhookFailed(c.Request.Context(), "signature")
			c.JSON(http.StatusBadRequest, dto.WebhookResponse{
				Status:  0,
				Message: "Invalid signature",
			})
		case errors.Is(err, domain.ErrTransactionNotFound):
			log.Error(fmt.Sprintf("Transaction not found for invoice: %s", payload.Invoice))
			metrics.RecordWebhookFailed(c.Request.Context(), "not_found")
			c.JSON(http.StatusBadRequest, dto.WebhookResponse{
				Status:  0,
				Message: fmt.Sprintf("Transaction not found for invoice: %s", payload.Invoice),
			})
		default:
			log.Error(fmt.Sprintf("Unexpected webhook error: %v", err))
			metrics.RecordWebhookFailed(c.Request.Context(), "internal")
			c.JSON(http.StatusInternalServerError, dto.WebhookResponse{
				Status:  0,
				Message: "Internal server error",
			})
		}
		return
	}

	metrics.RecordWebhookProcessed(c.Request.Context(), time.Since(start).Seconds(), tx.IsPaid())
	log.Info(fmt.Sprintf("Webhook processed for transaction %s, status: %s", tx.LocalID, tx.Status))

	c.JSON(http.StatusOK, dto.WebhookResponse{
		Status:  1,
		Message: webhookSuccessMessage,
	})
}
