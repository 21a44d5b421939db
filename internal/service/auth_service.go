package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-demo/internal/domain"
	"chat-demo/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrReadOnlyMode = errors.New("read-only mode: sessions cannot be created")
	ErrRateLimited  = errors.New("rate limited")
)

// UserFinder busca usuarios por phone y country.
type UserFinder interface {
	FindByPhone(ctx context.Context, phone, country string) ([]domain.User, error)
}

// SessionStore es lo minimo que el core necesita del store de sesiones.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthOptions agrupa la configuracion inyectada al arrancar.
type AuthOptions struct {
	ReadOnly bool
	Limiter  LoginRateLimiter
	Now      func() time.Time
	NewID    func() string
}

// Authenticator valida credenciales y emite sesiones.
type Authenticator struct {
	logger   *zap.Logger
	users    UserFinder
	sessions SessionStore
	readOnly bool
	limiter  LoginRateLimiter
	now      func() time.Time
	newID    func() string
}

func NewAuthenticator(logger *zap.Logger, users UserFinder, sessions SessionStore, opts AuthOptions) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Authenticator{
		logger:   logger,
		users:    users,
		sessions: sessions,
		readOnly: opts.ReadOnly,
		limiter:  opts.Limiter,
		now:      opts.Now,
		newID:    opts.NewID,
	}
}

// Login busca el usuario con phone y country exactos y crea una sesion nueva.
func (a *Authenticator) Login(ctx context.Context, phone, country string) (domain.Session, error) {
	if a == nil || a.users == nil || a.sessions == nil {
		return domain.Session{}, errors.New("authenticator not configured")
	}
	if phone == "" || country == "" {
		return domain.Session{}, ErrUserNotFound
	}
	if a.limiter != nil && !a.limiter.Allow(ctx, country, phone) {
		return domain.Session{}, ErrRateLimited
	}

	users, err := a.users.FindByPhone(ctx, phone, country)
	if err != nil {
		return domain.Session{}, fmt.Errorf("find user: %w", err)
	}
	if len(users) == 0 {
		return domain.Session{}, ErrUserNotFound
	}
	if len(users) > 1 {
		a.logger.Warn("multiple users share phone and country, using first",
			zap.String("country", country), zap.Int("matches", len(users)))
	}
	if a.readOnly {
		return domain.Session{}, ErrReadOnlyMode
	}

	session := domain.Session{
		ID:        a.newID(),
		UserID:    users[0].ID,
		Phone:     phone,
		Country:   country,
		CreatedAt: a.now(),
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrReadOnly) {
			return domain.Session{}, ErrReadOnlyMode
		}
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}

	a.logger.Info("session issued", zap.String("user_id", session.UserID), zap.String("session_id", session.ID))
	return session, nil
}

// Logout elimina la sesion. Una sesion ya inexistente no es un error.
func (a *Authenticator) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrMissingSessionID
	}
	err := a.sessions.Delete(ctx, sessionID)
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if errors.Is(err, repository.ErrReadOnly) {
		return ErrReadOnlyMode
	}
	return fmt.Errorf("delete session: %w", err)
}
