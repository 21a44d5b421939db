package domain

import "time"

type MessageKind string

const (
	KindText  MessageKind = "text"
	KindVoice MessageKind = "voice"
)

// Message es append-only: una vez creado nunca se modifica.
type Message struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chatId"`
	SenderID  string      `json:"senderId"`
	Content   string      `json:"content,omitempty"`
	AudioURL  string      `json:"audioUrl,omitempty"`
	Duration  int         `json:"duration,omitempty"`
	Kind      MessageKind `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// VoiceMessage lleva una estimacion de duracion y un localizador de audio en vez de texto.
type VoiceMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	AudioURL  string    `json:"audioUrl"`
	Duration  int       `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

// Message convierte la nota de voz al registro generico de la conversacion.
func (v VoiceMessage) Message() Message {
	return Message{
		ID:        v.ID,
		ChatID:    v.ChatID,
		SenderID:  v.SenderID,
		AudioURL:  v.AudioURL,
		Duration:  v.Duration,
		Kind:      KindVoice,
		Timestamp: v.Timestamp,
	}
}
