package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/billing"
	apperrors "github.com/mistcurrent/server/internal/shared/errors"
	"github.com/mistcurrent/server/internal/shared/middleware"
)

// Handler serves order endpoints for the checkout and account pages.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an order handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAuthRoutes registers order endpoints, all of which require
// authentication.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders", h.Create)
	rg.GET("/orders", h.List)
	rg.GET("/orders/:id", h.Get)
	rg.POST("/orders/:id/cancel", h.Cancel)
	rg.POST("/orders/:id/retry", h.Retry)
}

// Create opens a pending order for a plan.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("invalid request body"))
		return
	}

	userID := middleware.GetUserID(c)
	o, err := h.service.Create(c.Request.Context(), userID, req.PlanID, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(o))
}

// Get returns a single order.
func (h *Handler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("invalid order id"))
		return
	}

	o, err := h.service.Get(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(o))
}

// List returns the user's order history.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, total, err := h.service.List(c.Request.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := ListResponse{Orders: make([]Response, len(orders)), Total: total}
	for i, o := range orders {
		resp.Orders[i] = toResponse(o)
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel cancels a pending order.
func (h *Handler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("invalid order id"))
		return
	}

	o, err := h.service.Cancel(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(o))
}

// Retry moves a failed order back to pending.
func (h *Handler) Retry(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.BadRequest("invalid order id"))
		return
	}

	o, err := h.service.Retry(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(o))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		err = apperrors.NotFound("order")
	case errors.Is(err, billing.ErrPlanNotFound):
		err = apperrors.NotFound("plan")
	case errors.Is(err, ErrInvalidTransition):
		err = apperrors.Conflict(err.Error())
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error("order request failed", zap.Error(err))
		appErr = apperrors.Internal("internal error", err)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
