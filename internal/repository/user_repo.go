package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-demo/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	FindByPhone(ctx context.Context, phone, country string) ([]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, phone, country, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Phone,
		user.Country,
		user.Name,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, phone, country, name, created_at
		FROM users
		WHERE id = $1
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Phone,
		&u.Country,
		&u.Name,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

// FindByPhone compara phone y country por igualdad exacta.
func (r *PgUserRepository) FindByPhone(ctx context.Context, phone, country string) ([]domain.User, error) {
	const query = `
		SELECT id, phone, country, name, created_at
		FROM users
		WHERE phone = $1 AND country = $2
		ORDER BY created_at ASC
	`
	return r.query(ctx, query, phone, country)
}

func (r *PgUserRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT id, phone, country, name, created_at
		FROM users
		ORDER BY created_at ASC
	`
	return r.query(ctx, query)
}

func (r *PgUserRepository) query(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Phone, &u.Country, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
