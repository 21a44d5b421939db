package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chat-demo/internal/domain"
	"chat-demo/internal/service"
)

const (
	sessionHeader     = "X-Session-ID"
	sessionQueryParam = "session"
	sessionCookie     = "session"
	sessionContextKey = "chat_session"
)

// Redirect describe a donde y con que retardo navega el cliente tras un fallo del guard.
type Redirect struct {
	Path  string
	Delay time.Duration
}

func (r Redirect) body(err error) gin.H {
	return gin.H{
		"error":           err.Error(),
		"redirect":        r.Path,
		"redirectAfterMs": r.Delay.Milliseconds(),
	}
}

// SessionIDFromRequest extrae el id de sesion del header, la query o la cookie.
func SessionIDFromRequest(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(sessionHeader)); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.Query(sessionQueryParam)); id != "" {
		return id
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// SessionMiddleware ejecuta el SessionGuard y guarda la sesion en el contexto.
func SessionMiddleware(logger *zap.Logger, guard *service.SessionGuard, redirect Redirect) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guard == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session guard not configured"})
			return
		}

		session, err := guard.Validate(c.Request.Context(), SessionIDFromRequest(c))
		if err != nil {
			if service.IsGuardError(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, redirect.body(err))
				return
			}
			logger.Error("session validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not validate session"})
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// GetSession obtiene la sesion validada desde el contexto.
func GetSession(c *gin.Context) (domain.Session, bool) {
	val, ok := c.Get(sessionContextKey)
	if !ok {
		return domain.Session{}, false
	}
	session, ok := val.(domain.Session)
	return session, ok
}
