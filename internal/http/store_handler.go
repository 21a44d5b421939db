package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-demo/internal/domain"
	"chat-demo/internal/repository"
	"chat-demo/internal/service"
)

// StoreHandler expone las colecciones del store con el contrato REST del cliente.
type StoreHandler struct {
	logger   *zap.Logger
	users    repository.UserRepository
	sessions repository.SessionRepository
	contacts *service.ContactService
	messages *service.MessageService
}

// NewStoreHandler crea una instancia de StoreHandler con dependencias necesarias.
func NewStoreHandler(
	logger *zap.Logger,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	contacts *service.ContactService,
	messages *service.MessageService,
) *StoreHandler {
	return &StoreHandler{
		logger:   logger,
		users:    users,
		sessions: sessions,
		contacts: contacts,
		messages: messages,
	}
}

// storeError traduce errores de persistencia a respuestas HTTP.
func (h *StoreHandler) storeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrReadOnly):
		c.JSON(http.StatusForbidden, gin.H{"error": "read-only mode"})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
	}
}

// ListUsers maneja GET /users?phone=&country=.
func (h *StoreHandler) ListUsers(c *gin.Context) {
	phone, hasPhone := c.GetQuery("phone")
	country, hasCountry := c.GetQuery("country")

	var (
		users []domain.User
		err   error
	)
	if hasPhone || hasCountry {
		users, err = h.users.FindByPhone(c.Request.Context(), phone, country)
	} else {
		users, err = h.users.List(c.Request.Context())
	}
	if err != nil {
		h.storeError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateSession maneja POST /sessions.
func (h *StoreHandler) CreateSession(c *gin.Context) {
	var req struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId" binding:"required"`
		Phone     string    `json:"phone"`
		Country   string    `json:"country"`
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session := domain.Session{
		ID:        strings.TrimSpace(req.ID),
		UserID:    req.UserID,
		Phone:     req.Phone,
		Country:   req.Country,
		CreatedAt: req.CreatedAt.UTC(),
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		h.storeError(c, "create session", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession maneja GET /sessions/:id.
func (h *StoreHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, "get session", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession maneja DELETE /sessions/:id.
func (h *StoreHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, "delete session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUser maneja GET /users/:id.
func (h *StoreHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetContact maneja GET /contacts/:id.
func (h *StoreHandler) GetContact(c *gin.Context) {
	contact, err := h.contacts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, "get contact", err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// ListContacts maneja GET /contacts.
func (h *StoreHandler) ListContacts(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context())
	if err != nil {
		h.storeError(c, "list contacts", err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// CreateContact maneja POST /contacts.
func (h *StoreHandler) CreateContact(c *gin.Context) {
	var req service.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create contact request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrContactInvalidInput) || errors.Is(err, service.ErrUnknownCountry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.storeError(c, "create contact", err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// ListMessages maneja GET /messages?chatId=.
func (h *StoreHandler) ListMessages(c *gin.Context) {
	messages, err := h.messages.ListByChat(c.Request.Context(), c.Query("chatId"))
	if err != nil {
		h.storeError(c, "list messages", err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// CreateMessage maneja POST /messages.
func (h *StoreHandler) CreateMessage(c *gin.Context) {
	var req domain.Message
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	msg, err := h.messages.Save(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrMessageInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message"})
			return
		}
		h.storeError(c, "post message", err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListVoiceMessages maneja GET /voice-messages?chatId=.
func (h *StoreHandler) ListVoiceMessages(c *gin.Context) {
	messages, err := h.messages.ListVoice(c.Request.Context(), c.Query("chatId"))
	if err != nil {
		h.storeError(c, "list voice messages", err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// CreateVoiceMessage maneja POST /voice-messages.
func (h *StoreHandler) CreateVoiceMessage(c *gin.Context) {
	var req domain.VoiceMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid voice message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	voice, err := h.messages.SaveVoice(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrMessageInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid voice message"})
			return
		}
		h.storeError(c, "post voice message", err)
		return
	}
	c.JSON(http.StatusCreated, voice)
}

// Snapshot maneja GET /db.
func (h *StoreHandler) Snapshot(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		snap domain.Snapshot
		err  error
	)
	if snap.Users, err = h.users.List(ctx); err != nil {
		h.storeError(c, "snapshot users", err)
		return
	}
	if snap.Sessions, err = h.sessions.List(ctx); err != nil {
		h.storeError(c, "snapshot sessions", err)
		return
	}
	if snap.Contacts, err = h.contacts.List(ctx); err != nil {
		h.storeError(c, "snapshot contacts", err)
		return
	}
	if snap.Messages, err = h.messages.ListByChat(ctx, ""); err != nil {
		h.storeError(c, "snapshot messages", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
