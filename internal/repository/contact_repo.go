package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-demo/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, contact domain.Contact) error
	GetByID(ctx context.Context, id string) (domain.Contact, error)
	List(ctx context.Context) ([]domain.Contact, error)
}

type PgContactRepository struct {
	pool *pgxpool.Pool
}

func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

func (r *PgContactRepository) Create(ctx context.Context, contact domain.Contact) error {
	const query = `
		INSERT INTO contacts (id, first_name, last_name, full_name, phone, country_code, avatar_initials, avatar_color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.FirstName,
		contact.LastName,
		contact.FullName,
		contact.Phone,
		contact.CountryCode,
		contact.Avatar.Initials,
		contact.Avatar.Color,
		contact.CreatedAt,
	)
	return err
}

func (r *PgContactRepository) GetByID(ctx context.Context, id string) (domain.Contact, error) {
	const query = `
		SELECT id, first_name, last_name, full_name, phone, country_code, avatar_initials, avatar_color, created_at
		FROM contacts
		WHERE id = $1
	`
	c, err := scanContact(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Contact{}, ErrNotFound
	}
	return c, err
}

func (r *PgContactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	const query = `
		SELECT id, first_name, last_name, full_name, phone, country_code, avatar_initials, avatar_color, created_at
		FROM contacts
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func scanContact(row pgx.Row) (domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.FullName,
		&c.Phone,
		&c.CountryCode,
		&c.Avatar.Initials,
		&c.Avatar.Color,
		&c.CreatedAt,
	)
	return c, err
}
