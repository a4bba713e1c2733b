package vpn

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mistcurrent/server/internal/shared/config"
	apperrors "github.com/mistcurrent/server/internal/shared/errors"
	"github.com/mistcurrent/server/internal/shared/middleware"
)

// Handler serves the account VPN surface: access status, config
// downloads and the server list.
type Handler struct {
	service *Service
	cfg     *config.VPNConfig
	logger  *zap.Logger
}

// NewHandler creates a VPN handler.
func NewHandler(service *Service, cfg *config.VPNConfig, logger *zap.Logger) *Handler {
	return &Handler{service: service, cfg: cfg, logger: logger}
}

// RegisterRoutes registers public VPN endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/vpn/servers", h.ListServers)
}

// RegisterAuthRoutes registers endpoints that require authentication.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.GET("/account/vpn", h.GetAccess)
	rg.GET("/account/vpn/config", h.GetConfigURL)
}

// ListServers returns the server fleet.
func (h *Handler) ListServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"servers": toServerResponses(h.service.Servers())})
}

// GetAccess returns the authenticated user's VPN access, including the
// subscription link used by VPN client apps.
func (h *Handler) GetAccess(c *gin.Context) {
	userID := middleware.GetUserID(c)

	summary, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccessResponse(summary))
}

// GetConfigURL issues a short-lived download link for the user's
// client config. Protocol defaults to OpenVPN.
func (h *Handler) GetConfigURL(c *gin.Context) {
	userID := middleware.GetUserID(c)

	protocol := c.DefaultQuery("protocol", ProtocolOpenVPN)

	url, err := h.service.ConfigDownloadURL(c.Request.Context(), userID, protocol)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ConfigURLResponse{
		Protocol:  protocol,
		URL:       url,
		ExpiresAt: time.Now().Add(h.cfg.ConfigURLExpiry),
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAccessNotFound):
		err = apperrors.NotFound("vpn access")
	case errors.Is(err, ErrAccessSuspended):
		err = apperrors.Forbidden("vpn access is suspended")
	case errors.Is(err, ErrUnknownProtocol):
		err = apperrors.BadRequest("protocol must be openvpn or wireguard")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error("vpn request failed", zap.Error(err))
		appErr = apperrors.Internal("internal error", err)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
