package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/internal/apperr"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/password-reset", h.RequestPasswordReset)
		auth.POST("/password-reset/confirm", h.ConfirmPasswordReset)
	}
}

// bindJSON binds the body and reports binding failures as validation errors.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperr.Validation("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, types.AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.AuthResponse{Token: token, User: user})
}

// RequestPasswordReset answers 202 whether or not the email is registered.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req types.PasswordResetRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			_ = c.Error(err)
			return
		}
		logrus.WithField("email", req.Email).Debug("Password reset requested for unknown email")
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "if the account exists, a reset link has been sent"})
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req types.PasswordResetConfirmRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
