package handler

import (
	"net/http"

	"github.com/Payphone-Digital/bizsite/config"
	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	"github.com/Payphone-Digital/bizsite/internal/service"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *service.AuthService
	resetService *service.PasswordResetService
	cookieName   string
	cookieSecure bool
}

func NewAuthHandler(authService *service.AuthService, resetService *service.PasswordResetService, cfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		resetService: resetService,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
	}
}

// Register creates an account. The caller logs in separately.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "Register")

	var req dto.RegisterRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	if err := h.authService.Register(ctx, req); err != nil {
		logger.WarnWithContext(ctx, "Registration failed").
			Err(err).
			Log()
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(constants.MsgRegistered))
}

// Login returns both tokens and sets the access token cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "Login")

	var req dto.LoginRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	response, err := h.authService.Login(ctx, req)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	h.setAccessCookie(c, response.AccessToken)

	logger.InfoWithContext(ctx, "User logged in successfully").
		Uint("logged_in_user_id", response.User.ID).
		Log()

	c.JSON(http.StatusOK, response)
}

// Refresh exchanges the refresh token in the body for a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "Refresh")

	// A missing or unreadable body is an empty refresh token.
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.DebugWithContext(ctx, "Refresh body not decoded").
			Err(err).
			Log()
	}

	pair, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	h.setAccessCookie(c, pair.AccessToken)
	c.JSON(http.StatusOK, pair)
}

// Logout clears the access token cookie. Issued tokens stay valid until
// they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgLoggedOut))
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "ForgotPassword")

	var req dto.ForgotPasswordRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	message, err := h.resetService.Request(ctx, req.Email)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(message))
}

// ValidateResetToken reads the token from the path, falling back to the
// token query parameter.
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "ValidateResetToken")

	token := c.Param("token")
	if token == "" {
		token = c.Query(constants.QueryParamToken)
	}

	status, err := h.resetService.Validate(ctx, token)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "ResetPassword")

	var req dto.ResetPasswordRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	response, err := h.resetService.Consume(ctx, req.Token, req.NewPassword)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) setAccessCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, h.authService.AccessTokenTTL(), "/", "", h.cookieSecure, true)
}
