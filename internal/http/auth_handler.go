package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chat-demo/internal/service"
)

// AuthHandler expone login, logout y la validacion de sesion de cada pagina.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.Authenticator
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, auth *service.Authenticator) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		auth:   auth,
	}
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Phone   string `json:"phone" binding:"required"`
		Country string `json:"country" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Phone, req.Country)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrReadOnlyMode):
			c.JSON(http.StatusForbidden, gin.H{"error": "read-only mode"})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}

// CurrentSession maneja GET /auth/session.
func (h *AuthHandler) CurrentSession(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), session.ID); err != nil {
		if errors.Is(err, service.ErrReadOnlyMode) {
			c.JSON(http.StatusForbidden, gin.H{"error": "read-only mode"})
			return
		}
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not logout"})
		return
	}
	c.Status(http.StatusNoContent)
}
