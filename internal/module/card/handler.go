package card

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/shared/metrics"
)

// Handler serves card validation for the checkout form. The card number
// is never persisted or logged; validation happens in-process and the
// digits go no further than this handler.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a card handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// RegisterRoutes registers card endpoints on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout/card", h.Validate)
}

// Validate checks a card number, expiry and CVC and returns per-field
// results along with display formatting.
func (h *Handler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "BAD_REQUEST", "message": "invalid request body"},
		})
		return
	}

	resp := ValidateResponse{
		FormattedNumber: FormatNumber(req.Number),
		FormattedExpiry: FormatExpiry(req.Expiry),
	}

	brand, err := ValidateNumber(req.Number)
	resp.Brand = string(brand)
	if err != nil {
		resp.Number = FieldResult{Valid: false, Code: ErrorCode(err)}
	} else {
		resp.Number = FieldResult{Valid: true}
	}

	resp.Expiry = expiryResult(req.Expiry)
	resp.CVC = cvcResult(req.CVC, brand)

	result := "valid"
	if !resp.Number.Valid || !resp.Expiry.Valid || !resp.CVC.Valid {
		result = "invalid"
	}
	metrics.CardValidationsTotal.WithLabelValues(string(brand), result).Inc()

	c.JSON(http.StatusOK, resp)
}

func expiryResult(raw string) FieldResult {
	month, year, err := ParseExpiry(raw)
	if err == nil {
		err = ValidateExpiry(month, year)
	}
	if err != nil {
		return FieldResult{Valid: false, Code: ErrorCode(err)}
	}
	return FieldResult{Valid: true}
}

func cvcResult(raw string, brand Brand) FieldResult {
	if err := ValidateCVC(raw, brand); err != nil {
		return FieldResult{Valid: false, Code: ErrorCode(err)}
	}
	return FieldResult{Valid: true}
}
