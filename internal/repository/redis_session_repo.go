package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chat-demo/internal/domain"
)

// redisKV es el subconjunto del cliente de Redis que usa el store de sesiones.
type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisSessionRepository guarda sesiones como JSON bajo "session:<id>".
// La expiracion la decide el guard; el TTL de Redis solo recolecta basura.
type RedisSessionRepository struct {
	client redisKV
	prefix string
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client, retention time.Duration) *RedisSessionRepository {
	if client == nil {
		return nil
	}
	if retention <= 0 {
		retention = 48 * time.Hour
	}
	return &RedisSessionRepository{
		client: client,
		prefix: "session:",
		ttl:    retention,
	}
}

func (r *RedisSessionRepository) key(id string) string {
	return r.prefix + strings.TrimSpace(id)
}

func (r *RedisSessionRepository) Create(ctx context.Context, session domain.Session) error {
	if strings.TrimSpace(session.ID) == "" || strings.TrimSpace(session.UserID) == "" {
		return fmt.Errorf("session: missing id or user id")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	return r.client.Set(ctx, r.key(session.ID), data, r.ttl).Err()
}

func (r *RedisSessionRepository) GetByID(ctx context.Context, id string) (domain.Session, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Session{}, ErrNotFound
	}
	val, err := r.client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var s domain.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return domain.Session{}, fmt.Errorf("session: unmarshal: %w", err)
	}
	return s, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisSessionRepository) List(ctx context.Context) ([]domain.Session, error) {
	sessions := []domain.Session{}
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			s, err := r.GetByID(ctx, strings.TrimPrefix(k, r.prefix))
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			sessions = append(sessions, s)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return sessions, nil
}
