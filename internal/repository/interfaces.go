package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumapay/paylink/internal/domain"
)

// ClientFilter narrows client listings for the admin screens
type ClientFilter struct {
	Approved     *bool
	NameContains string
}

// ClientRepository defines the interface for merchant account data operations
type ClientRepository interface {
	// Create creates a new client account
	Create(ctx context.Context, client *domain.Client) error

	// GetByID retrieves a client by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// GetByEmail retrieves a client by email (case-insensitive)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)

	// GetByName retrieves a client by name
	GetByName(ctx context.Context, name string) (*domain.Client, error)

	// Update persists changes to a client
	Update(ctx context.Context, client *domain.Client) error

	// Delete removes a client
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves clients matching the filter, name-ordered
	List(ctx context.Context, filter ClientFilter) ([]*domain.Client, error)
}

// AdminRepository defines the interface for back-office principal data
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	GetByName(ctx context.Context, name string) (*domain.Admin, error)
}

// FeeConfigRepository defines the interface for fee configuration and
// installment plan data
type FeeConfigRepository interface {
	// GetCurrent retrieves the latest fee configuration record
	GetCurrent(ctx context.Context) (*domain.FeeConfiguration, error)

	// Save inserts a new configuration record; the latest record wins
	Save(ctx context.Context, cfg *domain.FeeConfiguration) error

	// ListPlans retrieves installment plans, count-ordered
	ListPlans(ctx context.Context, activeOnly bool) ([]*domain.InstallmentPlan, error)

	// GetActivePlan retrieves the active plan for an installment count
	GetActivePlan(ctx context.Context, installments int) (*domain.InstallmentPlan, error)

	// CreatePlan creates an installment plan
	CreatePlan(ctx context.Context, plan *domain.InstallmentPlan) error

	// UpdatePlan persists changes to an installment plan
	UpdatePlan(ctx context.Context, plan *domain.InstallmentPlan) error

	// DeletePlan removes an installment plan
	DeletePlan(ctx context.Context, id uuid.UUID) error
}

// LinkRepository defines the interface for payment link data operations
type LinkRepository interface {
	// Create persists a new payment link
	Create(ctx context.Context, link *domain.PaymentLink) error

	// GetByID retrieves a link by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentLink, error)

	// ListByClient retrieves a client's links, newest first
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.PaymentLink, error)

	// CountByClient counts a client's links
	CountByClient(ctx context.Context, clientID uuid.UUID) (int, error)

	// MarkPaid records settlement: paid flag, settled installments and
	// gateway settlement metadata
	MarkPaid(ctx context.Context, link *domain.PaymentLink) error

	// MarkVoided records a refused/cancelled/expired outcome
	MarkVoided(ctx context.Context, id uuid.UUID) error

	// SaveInvoiceText stores the generated ticket text
	SaveInvoiceText(ctx context.Context, id uuid.UUID, text string) error

	// Stats summarizes a client's links for the dashboard
	Stats(ctx context.Context, clientID uuid.UUID) (*domain.DashboardStats, error)

	// ListUnsettledSince retrieves pending links created after the cutoff,
	// for the periodic status sweep
	ListUnsettledSince(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PaymentLink, error)
}
