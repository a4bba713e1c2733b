package billing

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/mistcurrent/server/internal/shared/errors"
	"github.com/mistcurrent/server/internal/shared/middleware"
)

// Handler serves the plan catalog, checkout quotes and the account
// subscription view.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a billing handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers public billing endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/plans", h.ListPlans)
	rg.GET("/checkout/quote", h.Quote)
}

// RegisterAuthRoutes registers endpoints that require authentication.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.GET("/account/subscription", h.GetSubscription)
	rg.POST("/account/subscription/cancel", h.CancelSubscription)
}

// ListPlans returns the active plan catalog.
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]PlanResponse, len(plans))
	for i, p := range plans {
		resp[i] = toPlanResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"plans": resp})
}

// Quote returns the order summary for a plan: pricing, next renewal
// date and cadence. The purchase date defaults to today and can be
// overridden with ?date=YYYY-MM-DD.
func (h *Handler) Quote(c *gin.Context) {
	planID := c.Query("plan")
	if planID == "" {
		h.respondError(c, apperrors.BadRequest("plan query parameter is required"))
		return
	}

	purchasedAt := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.respondError(c, apperrors.BadRequest("date must be formatted YYYY-MM-DD"))
			return
		}
		purchasedAt = parsed
	}

	quote, err := h.service.QuoteFor(c.Request.Context(), planID, purchasedAt)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// GetSubscription returns the authenticated user's subscription.
func (h *Handler) GetSubscription(c *gin.Context) {
	userID := middleware.GetUserID(c)

	sub, err := h.service.GetSubscription(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}

// CancelSubscription cancels the authenticated user's subscription.
func (h *Handler) CancelSubscription(c *gin.Context) {
	userID := middleware.GetUserID(c)

	sub, err := h.service.CancelSubscription(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		err = apperrors.NotFound("plan")
	case errors.Is(err, ErrSubscriptionNotFound):
		err = apperrors.NotFound("subscription")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error("billing request failed", zap.Error(err))
		appErr = apperrors.Internal("internal error", err)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
