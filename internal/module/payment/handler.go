package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/order"
	apperrors "github.com/mistcurrent/server/internal/shared/errors"
	"github.com/mistcurrent/server/internal/shared/middleware"
)

// Handler serves payment endpoints for the checkout flow.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a payment handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAuthRoutes registers payment endpoints requiring auth.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.Create)
	rg.POST("/payments/:order_id/confirm", h.Confirm)
	rg.GET("/payments/:order_id/status", h.Status)
}

// Create opens a payment intent for an order.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("invalid request body"))
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		h.respondError(c, apperrors.BadRequest("invalid order id"))
		return
	}

	p, intent, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), orderID, req.Provider)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCreateResponse(p, intent))
}

// Confirm confirms the order's payment with the gateway.
func (h *Handler) Confirm(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("invalid order id"))
		return
	}

	p, err := h.service.Confirm(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		PaymentID: p.ID.String(),
		Provider:  p.Provider,
		Status:    p.Status,
	})
}

// Status returns the current payment state, polled by the success page.
func (h *Handler) Status(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("invalid order id"))
		return
	}

	p, err := h.service.Status(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		PaymentID: p.ID.String(),
		Provider:  p.Provider,
		Status:    p.Status,
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		err = apperrors.NotFound("order")
	case errors.Is(err, ErrPaymentNotFound):
		err = apperrors.NotFound("payment")
	case errors.Is(err, ErrOrderNotPayable):
		err = apperrors.Conflict(err.Error())
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error("payment request failed", zap.Error(err))
		appErr = apperrors.PaymentFailed("", err)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
