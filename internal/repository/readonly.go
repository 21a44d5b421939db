package repository

import (
	"context"

	"chat-demo/internal/domain"
)

// readOnlySessions bloquea escrituras sobre un SessionRepository cualquiera.
type readOnlySessions struct {
	SessionRepository
}

// ReadOnlySessions envuelve repo para que Create y Delete devuelvan ErrReadOnly.
func ReadOnlySessions(repo SessionRepository) SessionRepository {
	return readOnlySessions{SessionRepository: repo}
}

func (readOnlySessions) Create(context.Context, domain.Session) error { return ErrReadOnly }
func (readOnlySessions) Delete(context.Context, string) error         { return ErrReadOnly }
