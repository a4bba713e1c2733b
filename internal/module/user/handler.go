package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/mistcurrent/server/internal/shared/errors"
	"github.com/mistcurrent/server/internal/shared/middleware"
	"github.com/mistcurrent/server/internal/shared/random"
)

const oauthStateCookie = "oauth_state"

// Handler serves registration, login and the account profile.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a user handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers public auth endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.GET("/auth/google", h.GoogleAuth)
	rg.GET("/auth/google/callback", h.GoogleCallback)
}

// RegisterAuthRoutes registers endpoints that require authentication.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.GET("/account/me", h.Me)
}

// Register creates an email/password account.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	result, err := h.service.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login authenticates an email/password account.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.ValidationError(err.Error()))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(result))
}

// GoogleAuth starts the Google sign-in flow.
func (h *Handler) GoogleAuth(c *gin.Context) {
	state, err := random.Hex(16)
	if err != nil {
		h.respondError(c, err)
		return
	}

	url, err := h.service.GoogleAuthURL(state)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetCookie(oauthStateCookie, state, 600, "/", "", true, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback completes the Google sign-in flow.
func (h *Handler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		h.respondError(c, apperrors.BadRequest("oauth state mismatch"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", true, true)

	code := c.Query("code")
	if code == "" {
		h.respondError(c, apperrors.BadRequest("code query parameter is required"))
		return
	}

	result, err := h.service.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAuthResponse(result))
}

// Me returns the authenticated account.
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		err = apperrors.NotFound("user")
	case errors.Is(err, ErrEmailTaken):
		err = apperrors.Conflict("email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		err = apperrors.Unauthorized("invalid email or password")
	case errors.Is(err, ErrAccountSuspended):
		err = apperrors.Forbidden("account suspended")
	case errors.Is(err, ErrOAuthAccount):
		err = apperrors.BadRequest("account uses google sign-in")
	case errors.Is(err, ErrWeakPassword):
		err = apperrors.ValidationError("password must be 8-72 characters")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		h.logger.Error("user request failed", zap.Error(err))
		appErr = apperrors.Internal("internal error", err)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
