package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"chat-demo/internal/domain"
	"chat-demo/internal/repository"
	"chat-demo/internal/service"
)

// ErrNetwork envuelve cualquier fallo de transporte (conexion, timeout, cuerpo ilegible).
var ErrNetwork = errors.New("network failure")

const sessionHeader = "X-Session-ID"

// HTTPError es una respuesta no exitosa del store.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("store http error: status=%d", e.Status)
}

// Is permite clasificar con errors.Is usando los errores del repositorio.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case repository.ErrNotFound:
		return e.Status == http.StatusNotFound
	case repository.ErrReadOnly:
		return e.Status == http.StatusForbidden
	}
	return false
}

// Client habla el contrato REST del store.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu        sync.RWMutex
	sessionID string
}

// New construye un cliente apuntando a baseURL.
func New(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// SetSession fija el id de sesion que se envia en cada request.
func (c *Client) SetSession(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

func (c *Client) session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := c.session(); id != "" {
		req.Header.Set(sessionHeader, id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Debug("store error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// FindByPhone consulta GET /users?phone=&country=.
func (c *Client) FindByPhone(ctx context.Context, phone, country string) ([]domain.User, error) {
	var users []domain.User
	q := url.Values{"phone": {phone}, "country": {country}}
	if err := c.do(ctx, http.MethodGet, "/users", q, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateSession(ctx context.Context, session domain.Session) error {
	return c.do(ctx, http.MethodPost, "/sessions", nil, session, nil)
}

func (c *Client) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var session domain.Session
	if err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(id), nil, nil, &session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, nil, nil)
}

// Sessions adapta el cliente a service.SessionStore.
func (c *Client) Sessions() *SessionStore {
	return &SessionStore{c: c}
}

type SessionStore struct{ c *Client }

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	return s.c.CreateSession(ctx, session)
}

func (s *SessionStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	return s.c.GetSession(ctx, id)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.c.DeleteSession(ctx, id)
}

func (c *Client) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	var contacts []domain.Contact
	if err := c.do(ctx, http.MethodGet, "/contacts", nil, nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c *Client) CreateContact(ctx context.Context, input service.ContactInput) (domain.Contact, error) {
	var contact domain.Contact
	if err := c.do(ctx, http.MethodPost, "/contacts", nil, input, &contact); err != nil {
		return domain.Contact{}, err
	}
	return contact, nil
}

// ListMessages consulta GET /messages?chatId=, ya ordenados por tiempo.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	var messages []domain.Message
	if err := c.do(ctx, http.MethodGet, "/messages", url.Values{"chatId": {chatID}}, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) CreateMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	var created domain.Message
	if err := c.do(ctx, http.MethodPost, "/messages", nil, msg, &created); err != nil {
		return domain.Message{}, err
	}
	return created, nil
}

func (c *Client) CreateVoiceMessage(ctx context.Context, voice domain.VoiceMessage) (domain.VoiceMessage, error) {
	var created domain.VoiceMessage
	if err := c.do(ctx, http.MethodPost, "/voice-messages", nil, voice, &created); err != nil {
		return domain.VoiceMessage{}, err
	}
	return created, nil
}

// Snapshot consulta GET /db.
func (c *Client) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := c.do(ctx, http.MethodGet, "/db", nil, nil, &snap); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}
