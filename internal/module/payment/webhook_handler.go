package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/module/payment/provider"
)

// maxWebhookBody bounds gateway notification payloads.
const maxWebhookBody = 1 << 20

// WebhookHandler receives gateway notifications. It is mounted outside
// the authenticated API group: gateways authenticate via signatures.
type WebhookHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(service *Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, logger: logger}
}

// RegisterRoutes registers the webhook endpoint.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:provider", h.Handle)
}

// Handle processes one gateway notification. The response contract is
// 200 for anything applied or safely ignored so gateways stop
// redelivering, 401 for bad signatures, and 500 when processing failed
// and a retry is wanted.
func (h *WebhookHandler) Handle(c *gin.Context) {
	providerName := c.Param("provider")

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), providerName, payload, h.signature(c, providerName))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, provider.ErrInvalidSignature):
		h.logger.Warn("webhook signature rejected", zap.String("provider", providerName))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
	default:
		h.logger.Error("webhook processing failed",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
	}
}

// signature extracts the gateway's signature header.
func (h *WebhookHandler) signature(c *gin.Context, providerName string) string {
	switch providerName {
	case "stripe":
		return c.GetHeader("Stripe-Signature")
	default:
		return c.GetHeader("x-signature")
	}
}
