package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sardorbek/atmos-paylink/internal/domain"
	"github.com/sardorbek/atmos-paylink/internal/dto"
	"github.com/sardorbek/atmos-paylink/internal/service"
)

// PaylinkHandler handles payment-link HTTP endpoints
type PaylinkHandler struct {
	paylinkService service.PaylinkService
}

// NewPaylinkHandler creates a new PaylinkHandler
func NewPaylinkHandler(paylinkService service.PaylinkService) *PaylinkHandler {
	return &PaylinkHandler{
		paylinkService: paylinkService,
	}
}

// CreatePaylink handles POST /paylinks
// Registers the transaction with Atmos and returns the checkout URL
func (h *PaylinkHandler) CreatePaylink(c *gin.Context) {
	var req dto.CreatePaylinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", err.Error()))
		return
	}

	svcReq := &service.CreatePaylinkRequest{
		Account: req.Account,
		Amount:  req.Amount,
	}

	result, err := h.paylinkService.CreatePaymentLink(c.Request.Context(), svcReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountRequired), errors.Is(err, domain.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", err.Error()))
		case errors.Is(err, domain.ErrTransactionExists):
			c.JSON(http.StatusConflict, dto.NewErrorResponse("TRANSACTION_EXISTS", "a payment link already exists for this account"))
		case errors.Is(err, domain.ErrTokenExchange), errors.Is(err, domain.ErrGatewayRequest):
			c.JSON(http.StatusBadGateway, dto.NewErrorResponse("GATEWAY_ERROR", err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("CREATE_FAILED", err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromTransaction(result.Transaction, result.PaymentURL)))
}

// GetPaylink handles GET /paylinks/:account
// Returns the payment-link transaction for an account
func (h *PaylinkHandler) GetPaylink(c *gin.Context) {
	account := c.Param("account")
	if account == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", "account is required"))
		return
	}

	tx, err := h.paylinkService.GetTransaction(c.Request.Context(), account)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "transaction not found for this account"))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("GET_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromTransaction(tx, "")))
}
