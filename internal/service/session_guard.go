package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"chat-demo/internal/domain"
	"chat-demo/internal/repository"
)

var (
	ErrMissingSessionID = errors.New("missing session id")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
)

const (
	DefaultSessionTTLHours = 24
	// DefaultRedirectDelay deja ver el mensaje de error antes de navegar al login.
	DefaultRedirectDelay = 1500 * time.Millisecond
)

// IsGuardError indica si err obliga a redirigir al punto de entrada.
func IsGuardError(err error) bool {
	return errors.Is(err, ErrMissingSessionID) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionExpired)
}

// SessionGuard valida existencia y vigencia de una sesion.
type SessionGuard struct {
	logger   *zap.Logger
	sessions SessionStore
	ttlHours int64
	now      func() time.Time
}

func NewSessionGuard(logger *zap.Logger, sessions SessionStore, ttlHours int, now func() time.Time) *SessionGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttlHours <= 0 {
		ttlHours = DefaultSessionTTLHours
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &SessionGuard{
		logger:   logger,
		sessions: sessions,
		ttlHours: int64(ttlHours),
		now:      now,
	}
}

// Validate devuelve la sesion sin modificarla si existe y no vencio.
// Solo horas completas > ttl cuentan como vencida (23h59m sigue valida).
func (g *SessionGuard) Validate(ctx context.Context, sessionID string) (domain.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Session{}, ErrMissingSessionID
	}

	session, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	if session.ElapsedHours(g.now()) > g.ttlHours {
		if err := g.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			g.logger.Warn("delete expired session failed", zap.Error(err), zap.String("session_id", sessionID))
		}
		return domain.Session{}, ErrSessionExpired
	}

	return session, nil
}

// RedirectAfter invoca navigate tras el retardo fijo, salvo que ctx se cancele antes.
func RedirectAfter(ctx context.Context, delay time.Duration, navigate func()) bool {
	if delay <= 0 {
		navigate()
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		navigate()
		return true
	}
}
