package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lumapay/paylink/internal/domain"
	customError "github.com/lumapay/paylink/pkg/errors"
)

type feeConfigRepository struct {
	db *sqlx.DB
}

func NewFeeConfigRepository(db *sqlx.DB) FeeConfigRepository {
	return &feeConfigRepository{db: db}
}

func (r *feeConfigRepository) GetCurrent(ctx context.Context) (*domain.FeeConfiguration, error) {
	query := `
		SELECT id, vat_general, vat_financing, gateway_pct_credit, surcharge_pct_credit,
		       gateway_pct_debit, surcharge_pct_debit, updated_at
		FROM fee_configurations
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var cfg domain.FeeConfiguration
	if err := r.db.GetContext(ctx, &cfg, query); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *feeConfigRepository) Save(ctx context.Context, cfg *domain.FeeConfiguration) error {
	query := `
		INSERT INTO fee_configurations (id, vat_general, vat_financing, gateway_pct_credit,
		       surcharge_pct_credit, gateway_pct_debit, surcharge_pct_debit, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	cfg.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.VATGeneral,
		cfg.VATFinancing,
		cfg.GatewayPctCredit,
		cfg.SurchargePctCredit,
		cfg.GatewayPctDebit,
		cfg.SurchargePctDebit,
		cfg.UpdatedAt,
	)
	return err
}

func (r *feeConfigRepository) ListPlans(ctx context.Context, activeOnly bool) ([]*domain.InstallmentPlan, error) {
	query := `
		SELECT id, installments, label, base_rate, active, created_at
		FROM installment_plans
		WHERE ($1 = false OR active = true)
		ORDER BY installments
	`

	var plans []*domain.InstallmentPlan
	if err := r.db.SelectContext(ctx, &plans, query, activeOnly); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *feeConfigRepository) GetActivePlan(ctx context.Context, installments int) (*domain.InstallmentPlan, error) {
	query := `
		SELECT id, installments, label, base_rate, active, created_at
		FROM installment_plans
		WHERE installments = $1 AND active = true
	`

	var plan domain.InstallmentPlan
	if err := r.db.GetContext(ctx, &plan, query, installments); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *feeConfigRepository) CreatePlan(ctx context.Context, plan *domain.InstallmentPlan) error {
	query := `
		INSERT INTO installment_plans (id, installments, label, base_rate, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	plan.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Installments,
		plan.Label,
		plan.BaseRate,
		plan.Active,
		plan.CreatedAt,
	)
	if isUniqueViolation(err) {
		return customError.WrapDuplicateRecord("an active plan with that installment count already exists")
	}
	return err
}

func (r *feeConfigRepository) UpdatePlan(ctx context.Context, plan *domain.InstallmentPlan) error {
	query := `
		UPDATE installment_plans
		SET installments = $2, label = $3, base_rate = $4, active = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Installments,
		plan.Label,
		plan.BaseRate,
		plan.Active,
	)
	if isUniqueViolation(err) {
		return customError.WrapDuplicateRecord("an active plan with that installment count already exists")
	}
	return err
}

func (r *feeConfigRepository) DeletePlan(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM installment_plans WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
