package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const loginPath = "/auth/login"

// RouterOptions agrupa los flags de despliegue que afectan al ruteo.
type RouterOptions struct {
	ReadOnly       bool
	RequireSession bool
	CORSOrigins    string
}

// NewRouter configura el router de Gin con middlewares y rutas del store.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	authH *AuthHandler,
	storeH *StoreHandler,
	sessionMW gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	// El filtro read-only es global para cubrir tambien rutas inexistentes.
	// Login queda exento: el Authenticator distingue usuario inexistente de
	// modo read-only.
	r.Use(
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		corsMiddleware(opts.CORSOrigins),
		readOnlyMiddleware(opts.ReadOnly, loginPath),
		jsonContentTypeMiddleware(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "readOnly": opts.ReadOnly})
	})

	r.POST(loginPath, authH.Login)
	auth := r.Group("/auth")
	auth.GET("/session", sessionMW, authH.CurrentSession)
	auth.POST("/logout", sessionMW, authH.Logout)

	r.GET("/db", storeH.Snapshot)
	r.GET("/users", storeH.ListUsers)
	r.GET("/users/:id", storeH.GetUser)

	sessions := r.Group("/sessions")
	sessions.POST("", storeH.CreateSession)
	sessions.GET("/:id", storeH.GetSession)
	sessions.DELETE("/:id", storeH.DeleteSession)

	chat := r.Group("/")
	if opts.RequireSession {
		chat.Use(sessionMW)
	}
	chat.GET("/contacts", storeH.ListContacts)
	chat.GET("/contacts/:id", storeH.GetContact)
	chat.POST("/contacts", storeH.CreateContact)
	chat.GET("/messages", storeH.ListMessages)
	chat.POST("/messages", storeH.CreateMessage)
	chat.GET("/voice-messages", storeH.ListVoiceMessages)
	chat.POST("/voice-messages", storeH.CreateVoiceMessage)

	return r
}
