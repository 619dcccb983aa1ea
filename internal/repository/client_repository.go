package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lumapay/paylink/internal/domain"
	customError "github.com/lumapay/paylink/pkg/errors"
)

// uniqueViolation is the Postgres error code for unique constraint breaches
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, name, email, phone, password_hash, approved, blocked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.Email,
		client.Phone,
		client.PasswordHash,
		client.Approved,
		client.Blocked,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return customError.WrapDuplicateRecord("client name or email already in use")
	}
	return err
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `
		SELECT id, name, email, phone, password_hash, approved, blocked, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*domain.Client, error) {
	query := `
		SELECT id, name, email, phone, password_hash, approved, blocked, created_at, updated_at
		FROM clients
		WHERE lower(email) = lower($1)
	`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, email); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	query := `
		SELECT id, name, email, phone, password_hash, approved, blocked, created_at, updated_at
		FROM clients
		WHERE name = $1
	`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, name); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, password_hash = $5, approved = $6, blocked = $7, updated_at = $8
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.Email,
		client.Phone,
		client.PasswordHash,
		client.Approved,
		client.Blocked,
		time.Now(),
	)
	if isUniqueViolation(err) {
		return customError.WrapDuplicateRecord("client name or email already in use")
	}
	return err
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM clients WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter) ([]*domain.Client, error) {
	query := `
		SELECT id, name, email, phone, password_hash, approved, blocked, created_at, updated_at
		FROM clients
		WHERE ($1::boolean IS NULL OR approved = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name
	`

	var clients []*domain.Client
	if err := r.db.SelectContext(ctx, &clients, query, filter.Approved, filter.NameContains); err != nil {
		return nil, err
	}
	return clients, nil
}
