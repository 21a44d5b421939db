package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"chat-demo/internal/domain"
)

// MessageFilter restringe el listado. Campos vacios no filtran.
type MessageFilter struct {
	ChatID string
	Kind   domain.MessageKind
}

// Matches indica si el mensaje pasa el filtro.
func (f MessageFilter) Matches(m domain.Message) bool {
	if f.ChatID != "" && m.ChatID != f.ChatID {
		return false
	}
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	return true
}

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	List(ctx context.Context, filter MessageFilter) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, chat_id, sender_id, content, audio_url, duration, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var audioURL interface{}
	if message.AudioURL != "" {
		audioURL = message.AudioURL
	}

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.ChatID,
		message.SenderID,
		message.Content,
		audioURL,
		message.Duration,
		string(message.Kind),
		message.Timestamp,
	)
	return err
}

// List devuelve los mensajes en orden de almacenamiento (created_at ascendente).
func (r *PgMessageRepository) List(ctx context.Context, filter MessageFilter) ([]domain.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, content, audio_url, duration, kind, created_at
		FROM messages
	`
	var (
		conds []string
		args  []any
	)
	if filter.ChatID != "" {
		args = append(args, filter.ChatID)
		conds = append(conds, fmt.Sprintf("chat_id = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var audioURL *string
		var kind string

		err = rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.SenderID,
			&msg.Content,
			&audioURL,
			&msg.Duration,
			&kind,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		if audioURL != nil {
			msg.AudioURL = *audioURL
		}
		msg.Kind = domain.MessageKind(kind)
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
