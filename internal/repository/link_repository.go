package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lumapay/paylink/internal/domain"
	customError "github.com/lumapay/paylink/pkg/errors"
)

const linkColumns = `
	id, client_id, net_amount, gross_amount, card_type, installments,
	settled_installments, description, order_id, payment_url, paid, voided,
	deduction_pct, deduction_amount, receiver_amount, auth_code,
	transaction_id, batch_number, invoice_text, created_at
`

type linkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *domain.PaymentLink) error {
	query := `
		INSERT INTO payment_links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	link.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.ClientID,
		link.NetAmount,
		link.GrossAmount,
		link.CardType,
		link.Installments,
		link.SettledInst,
		link.Description,
		link.OrderID,
		link.PaymentURL,
		link.Paid,
		link.Voided,
		link.DeductionPct,
		link.DeductionAmt,
		link.ReceiverAmt,
		link.AuthCode,
		link.TransactionID,
		link.BatchNumber,
		link.InvoiceText,
		link.CreatedAt,
	)
	if isUniqueViolation(err) {
		return customError.WrapDuplicateRecord("order id already exists")
	}
	return err
}

func (r *linkRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentLink, error) {
	query := `SELECT ` + linkColumns + ` FROM payment_links WHERE id = $1`

	var link domain.PaymentLink
	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.PaymentLink, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM payment_links
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var links []*domain.PaymentLink
	if err := r.db.SelectContext(ctx, &links, query, clientID, limit, offset); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *linkRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM payment_links WHERE client_id = $1`

	var total int
	if err := r.db.GetContext(ctx, &total, query, clientID); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *linkRepository) MarkPaid(ctx context.Context, link *domain.PaymentLink) error {
	// The paid guard keeps repeated polls from rewriting settlement metadata
	query := `
		UPDATE payment_links
		SET paid = true, voided = false, settled_installments = $2,
		    auth_code = $3, transaction_id = $4, batch_number = $5
		WHERE id = $1 AND paid = false
	`

	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.SettledInst,
		link.AuthCode,
		link.TransactionID,
		link.BatchNumber,
	)
	return err
}

func (r *linkRepository) MarkVoided(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE payment_links
		SET voided = true
		WHERE id = $1 AND paid = false
	`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *linkRepository) SaveInvoiceText(ctx context.Context, id uuid.UUID, text string) error {
	query := `
		UPDATE payment_links
		SET invoice_text = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, text)
	return err
}

func (r *linkRepository) Stats(ctx context.Context, clientID uuid.UUID) (*domain.DashboardStats, error) {
	query := `
		SELECT count(*) AS total_links,
		       count(*) FILTER (WHERE paid) AS paid_links,
		       count(*) FILTER (WHERE NOT paid AND NOT voided) AS pending_payments
		FROM payment_links
		WHERE client_id = $1
	`

	var stats struct {
		TotalLinks      int `db:"total_links"`
		PaidLinks       int `db:"paid_links"`
		PendingPayments int `db:"pending_payments"`
	}
	if err := r.db.GetContext(ctx, &stats, query, clientID); err != nil {
		return nil, err
	}
	return &domain.DashboardStats{
		TotalLinks:      stats.TotalLinks,
		PaidLinks:       stats.PaidLinks,
		PendingPayments: stats.PendingPayments,
	}, nil
}

func (r *linkRepository) ListUnsettledSince(ctx context.Context, cutoff time.Time, limit int) ([]*domain.PaymentLink, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM payment_links
		WHERE paid = false AND voided = false AND created_at >= $1
		ORDER BY created_at
		LIMIT $2
	`

	var links []*domain.PaymentLink
	if err := r.db.SelectContext(ctx, &links, query, cutoff, limit); err != nil {
		return nil, err
	}
	return links, nil
}
