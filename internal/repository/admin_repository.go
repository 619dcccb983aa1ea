package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lumapay/paylink/internal/domain"
	customError "github.com/lumapay/paylink/pkg/errors"
)

type adminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, name, email, phone, password_hash, blocked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	admin.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		admin.ID,
		admin.Name,
		admin.Email,
		admin.Phone,
		admin.PasswordHash,
		admin.Blocked,
		admin.CreatedAt,
	)
	if isUniqueViolation(err) {
		return customError.WrapDuplicateRecord("admin name or email already in use")
	}
	return err
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	query := `
		SELECT id, name, email, phone, password_hash, blocked, created_at
		FROM admins
		WHERE id = $1
	`

	var admin domain.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) GetByName(ctx context.Context, name string) (*domain.Admin, error) {
	query := `
		SELECT id, name, email, phone, password_hash, blocked, created_at
		FROM admins
		WHERE name = $1
	`

	var admin domain.Admin
	if err := r.db.GetContext(ctx, &admin, query, name); err != nil {
		return nil, err
	}
	return &admin, nil
}
