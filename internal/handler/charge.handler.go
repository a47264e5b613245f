package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pix-charge-api/internal/service"
)

type CreateChargeRequest struct {
	PayerName     string          `json:"payer_name" binding:"required"`
	PayerDocument string          `json:"payer_document" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Description   string          `json:"description" binding:"required"`
}

// SimulatePaymentRequest carries the charge id only. The id is not
// validated here: an empty or unknown id surfaces as "Charge not found".
type SimulatePaymentRequest struct {
	ChargeID string `json:"charge_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ChargeHandler struct {
	charges service.ChargeService
	log     *zap.Logger
}

func NewChargeHandler(charges service.ChargeService, log *zap.Logger) *ChargeHandler {
	return &ChargeHandler{charges: charges, log: log}
}

func (h *ChargeHandler) Create(c *gin.Context) {
	var req CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: err.Error()})
		return
	}
	if req.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "amount must not be negative"})
		return
	}

	view, err := h.charges.CreateCharge(c.Request.Context(), service.CreateChargeInput{
		PayerName:     req.PayerName,
		PayerDocument: req.PayerDocument,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		h.log.Error("create charge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "failed to create charge"})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *ChargeHandler) FindById(c *gin.Context) {
	view, err := h.charges.FindChargeById(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrFindCharge) {
		c.JSON(http.StatusNotFound, MessageResponse{Message: err.Error()})
		return
	}
	if err != nil {
		h.log.Error("find charge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "failed to find charge"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ChargeHandler) SimulatePayment(c *gin.Context) {
	var req SimulatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: err.Error()})
		return
	}

	err := h.charges.RequestSimulation(c.Request.Context(), req.ChargeID)
	if errors.Is(err, service.ErrChargeNotFound) {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: err.Error()})
		return
	}
	if err != nil {
		h.log.Error("request simulation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "failed to request simulation"})
		return
	}
	c.Status(http.StatusNoContent)
}
