package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/repository"
	customError "github.com/lumapay/paylink/pkg/errors"
)

// AdminService covers the back-office: admin authentication, client
// approval/blocking and the fee/plan configuration.
type AdminService struct {
	AdminRepo  repository.AdminRepository
	ClientRepo repository.ClientRepository
	FeeRepo    repository.FeeConfigRepository
	clients    *ClientService
	sessions   *SessionStore
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	clientRepo repository.ClientRepository,
	feeRepo repository.FeeConfigRepository,
	clientService *ClientService,
	sessions *SessionStore,
) *AdminService {
	return &AdminService{
		AdminRepo:  adminRepo,
		ClientRepo: clientRepo,
		FeeRepo:    feeRepo,
		clients:    clientService,
		sessions:   sessions,
	}
}

// Login authenticates an admin by name and password
func (s *AdminService) Login(ctx context.Context, req *domain.AdminLoginRequest) (*domain.AdminLoginResponse, error) {
	admin, err := s.AdminRepo.GetByName(ctx, req.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.NewBusinessError(
			customError.ErrCodeInvalidCredentials, "Admin not found", customError.ErrAdminNotFound)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if admin.Blocked {
		return nil, customError.NewBusinessError(
			customError.ErrCodeClientBlocked, "Account is blocked", customError.ErrClientBlocked)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		return nil, customError.NewBusinessError(
			customError.ErrCodeInvalidCredentials, "Incorrect password", customError.ErrInvalidCredentials)
	}

	token, err := s.sessions.Create(ctx, SessionScopeAdmin, admin.ID)
	if err != nil {
		return nil, err
	}
	return &domain.AdminLoginResponse{Token: token, Admin: admin}, nil
}

// Logout destroys the admin session token
func (s *AdminService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, SessionScopeAdmin, token)
}

// ListClients returns approved clients, optionally filtered by name
func (s *AdminService) ListClients(ctx context.Context, nameContains string) ([]*domain.Client, error) {
	approved := true
	clients, err := s.ClientRepo.List(ctx, repository.ClientFilter{
		Approved:     &approved,
		NameContains: nameContains,
	})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

// ListPendingClients returns accounts awaiting approval
func (s *AdminService) ListPendingClients(ctx context.Context) ([]*domain.Client, error) {
	approved := false
	clients, err := s.ClientRepo.List(ctx, repository.ClientFilter{Approved: &approved})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

// ApproveClient flips the approval gate for a pending account
func (s *AdminService) ApproveClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.clients.Get(ctx, id)
	if err != nil {
		return err
	}
	if client.Approved {
		return customError.NewValidationError("Client is already approved.")
	}
	client.Approved = true
	return s.ClientRepo.Update(ctx, client)
}

// SetClientBlocked blocks or unblocks an account
func (s *AdminService) SetClientBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	client, err := s.clients.Get(ctx, id)
	if err != nil {
		return err
	}
	client.Blocked = blocked
	return s.ClientRepo.Update(ctx, client)
}

// UpdateClient applies admin edits, including the approval flag
func (s *AdminService) UpdateClient(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.Client, error) {
	return s.clients.applyUpdate(ctx, id, req)
}

// DeleteClient removes a client account
func (s *AdminService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clients.Get(ctx, id); err != nil {
		return err
	}
	return s.ClientRepo.Delete(ctx, id)
}

// GetFeeConfiguration returns the current configuration record
func (s *AdminService) GetFeeConfiguration(ctx context.Context) (*domain.FeeConfiguration, error) {
	cfg, err := s.FeeRepo.GetCurrent(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapConfigInvalid("no fee configuration available")
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return cfg, nil
}

// UpdateFeeConfiguration stores a new configuration record after checking
// that every percentage is non-negative and that the VAT-loaded base
// deduction stays below 100 for both card types. Plan financing rates are
// validated per plan on top of this floor.
func (s *AdminService) UpdateFeeConfiguration(ctx context.Context, req *domain.UpdateFeeConfigurationRequest) (*domain.FeeConfiguration, error) {
	cfg := &domain.FeeConfiguration{
		ID:                 uuid.New(),
		VATGeneral:         req.VATGeneral,
		VATFinancing:       req.VATFinancing,
		GatewayPctCredit:   req.GatewayPctCredit,
		SurchargePctCredit: req.SurchargePctCredit,
		GatewayPctDebit:    req.GatewayPctDebit,
		SurchargePctDebit:  req.SurchargePctDebit,
	}

	if err := validateFeeConfiguration(cfg); err != nil {
		return nil, err
	}

	if err := s.FeeRepo.Save(ctx, cfg); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return cfg, nil
}

func validateFeeConfiguration(cfg *domain.FeeConfiguration) error {
	var messages []string

	for name, pct := range map[string]decimal.Decimal{
		"vat_general":          cfg.VATGeneral,
		"vat_financing":        cfg.VATFinancing,
		"gateway_pct_credit":   cfg.GatewayPctCredit,
		"surcharge_pct_credit": cfg.SurchargePctCredit,
		"gateway_pct_debit":    cfg.GatewayPctDebit,
		"surcharge_pct_debit":  cfg.SurchargePctDebit,
	} {
		if pct.IsNegative() {
			messages = append(messages, fmt.Sprintf("%s must not be negative.", name))
		}
	}
	if len(messages) > 0 {
		return customError.NewValidationError(messages...)
	}

	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	vatFactor := one.Add(cfg.VATGeneral.Div(hundred))

	for _, cardType := range []string{domain.CardTypeCredit, domain.CardTypeDebit} {
		gatewayPct, surchargePct := cfg.BasePercents(cardType)
		total := gatewayPct.Add(surchargePct).Mul(vatFactor)
		if total.GreaterThanOrEqual(hundred) {
			return customError.WrapConfigInvalid(fmt.Sprintf(
				"%s deduction percent %s reaches 100", cardType, total.StringFixed(4)))
		}
	}
	return nil
}

// ListPlans returns installment plans, optionally restricted to active ones
func (s *AdminService) ListPlans(ctx context.Context, activeOnly bool) ([]*domain.InstallmentPlan, error) {
	plans, err := s.FeeRepo.ListPlans(ctx, activeOnly)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return plans, nil
}

// CreatePlan creates an installment plan
func (s *AdminService) CreatePlan(ctx context.Context, req *domain.UpsertInstallmentPlanRequest) (*domain.InstallmentPlan, error) {
	if err := validatePlan(req); err != nil {
		return nil, err
	}

	plan := &domain.InstallmentPlan{
		ID:           uuid.New(),
		Installments: req.Installments,
		Label:        req.Label,
		BaseRate:     req.BaseRate,
		Active:       req.Active,
	}
	if err := s.FeeRepo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// UpdatePlan edits an installment plan
func (s *AdminService) UpdatePlan(ctx context.Context, id uuid.UUID, req *domain.UpsertInstallmentPlanRequest) (*domain.InstallmentPlan, error) {
	if err := validatePlan(req); err != nil {
		return nil, err
	}

	plan := &domain.InstallmentPlan{
		ID:           id,
		Installments: req.Installments,
		Label:        req.Label,
		BaseRate:     req.BaseRate,
		Active:       req.Active,
	}
	if err := s.FeeRepo.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DeletePlan removes an installment plan
func (s *AdminService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.FeeRepo.DeletePlan(ctx, id)
}

func validatePlan(req *domain.UpsertInstallmentPlanRequest) error {
	var messages []string
	if req.Installments <= 0 {
		messages = append(messages, "Installment count must be positive.")
	}
	if req.BaseRate.IsNegative() {
		messages = append(messages, "Base financing rate must not be negative.")
	}
	if req.Label == "" {
		messages = append(messages, "Label is required.")
	}
	if len(messages) > 0 {
		return customError.NewValidationError(messages...)
	}
	return nil
}
