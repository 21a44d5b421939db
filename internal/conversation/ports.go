package conversation

import (
	"context"

	"chat-demo/internal/domain"
	"chat-demo/internal/service"
)

// Store es el subconjunto del store REST que usa la conversacion.
type Store interface {
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	CreateContact(ctx context.Context, input service.ContactInput) (domain.Contact, error)
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)
	CreateMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	CreateVoiceMessage(ctx context.Context, voice domain.VoiceMessage) (domain.VoiceMessage, error)
}

type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

type RenderedMessage struct {
	domain.Message
	Direction Direction
}

// View reemplaza por completo lo que se mostro antes.
type View struct {
	ChatID   string
	Contact  *domain.Contact
	Messages []RenderedMessage
}

type Renderer interface {
	Render(view View)
}

// Notifier muestra avisos al usuario.
type Notifier interface {
	Notify(msg string)
}

// Capture es una grabacion en curso. Chunks se cierra despues de Close.
type Capture interface {
	Chunks() <-chan []byte
	Close() error
}

type Microphone interface {
	Open(ctx context.Context) (Capture, error)
}
