package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-demo/internal/domain"
	"chat-demo/internal/repository"
)

// MessageService encapsula la lógica para manejar mensajes de una conversacion.
type MessageService struct {
	repo repository.MessageRepository
}

var (
	ErrMessageServiceNotConfigured = errors.New("message service not configured")
	ErrMessageInvalidInput         = errors.New("message invalid input")
)

func NewMessageService(repo repository.MessageRepository) *MessageService {
	return &MessageService{repo: repo}
}

// Save valida y agrega el mensaje. Completa id y timestamp si faltan.
func (s *MessageService) Save(ctx context.Context, msg domain.Message) (domain.Message, error) {
	if s == nil || s.repo == nil {
		return domain.Message{}, ErrMessageServiceNotConfigured
	}

	msg.ChatID = strings.TrimSpace(msg.ChatID)
	msg.SenderID = strings.TrimSpace(msg.SenderID)
	msg.Content = strings.TrimSpace(msg.Content)
	msg.AudioURL = strings.TrimSpace(msg.AudioURL)
	if msg.Kind == "" {
		msg.Kind = domain.KindText
	}

	if msg.ChatID == "" || msg.SenderID == "" {
		return domain.Message{}, ErrMessageInvalidInput
	}
	switch msg.Kind {
	case domain.KindText:
		if msg.Content == "" {
			return domain.Message{}, ErrMessageInvalidInput
		}
	case domain.KindVoice:
		if msg.AudioURL == "" || msg.Duration < 0 {
			return domain.Message{}, ErrMessageInvalidInput
		}
	default:
		return domain.Message{}, ErrMessageInvalidInput
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// SaveVoice persiste una nota de voz como mensaje de tipo voice.
func (s *MessageService) SaveVoice(ctx context.Context, voice domain.VoiceMessage) (domain.VoiceMessage, error) {
	msg, err := s.Save(ctx, voice.Message())
	if err != nil {
		return domain.VoiceMessage{}, err
	}
	return domain.VoiceMessage{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		AudioURL:  msg.AudioURL,
		Duration:  msg.Duration,
		Timestamp: msg.Timestamp,
	}, nil
}

// ListByChat devuelve los mensajes del chat, o todos si chatID esta vacio.
func (s *MessageService) ListByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMessageServiceNotConfigured
	}
	return s.repo.List(ctx, repository.MessageFilter{ChatID: strings.TrimSpace(chatID)})
}

func (s *MessageService) ListVoice(ctx context.Context, chatID string) ([]domain.Message, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMessageServiceNotConfigured
	}
	return s.repo.List(ctx, repository.MessageFilter{
		ChatID: strings.TrimSpace(chatID),
		Kind:   domain.KindVoice,
	})
}
