package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Link lifecycle states. Paid and voided are terminal; a link never
// transitions back out of either.
const (
	LinkStatusPending = "pending"
	LinkStatusPaid    = "paid"
	LinkStatusVoided  = "voided"
)

// PaymentLink is the persisted record of a priced order submitted to the
// gateway. All computed money fields are frozen at creation time; only the
// status-poll operation mutates the record afterwards.
type PaymentLink struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ClientID      uuid.UUID       `json:"client_id" db:"client_id"`
	NetAmount     decimal.Decimal `json:"net_amount" db:"net_amount"`
	GrossAmount   decimal.Decimal `json:"gross_amount" db:"gross_amount"`
	CardType      string          `json:"card_type" db:"card_type"`
	Installments  int             `json:"installments" db:"installments"`
	SettledInst   int             `json:"settled_installments" db:"settled_installments"`
	Description   string          `json:"description" db:"description"`
	OrderID       string          `json:"order_id" db:"order_id"`
	PaymentURL    string          `json:"payment_url" db:"payment_url"`
	Paid          bool            `json:"paid" db:"paid"`
	Voided        bool            `json:"voided" db:"voided"`
	DeductionPct  decimal.Decimal `json:"deduction_pct" db:"deduction_pct"`
	DeductionAmt  decimal.Decimal `json:"deduction_amount" db:"deduction_amount"`
	ReceiverAmt   decimal.Decimal `json:"receiver_amount" db:"receiver_amount"`
	AuthCode      string          `json:"auth_code" db:"auth_code"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	BatchNumber   string          `json:"batch_number" db:"batch_number"`
	InvoiceText   string          `json:"-" db:"invoice_text"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Status derives the lifecycle state from the terminal flags
func (l *PaymentLink) Status() string {
	switch {
	case l.Paid:
		return LinkStatusPaid
	case l.Voided:
		return LinkStatusVoided
	default:
		return LinkStatusPending
	}
}

// BuildInvoiceText renders the plain-text ticket for the link. The caller
// persists the result so the artifact is generated once.
func (l *PaymentLink) BuildInvoiceText(clientName string) string {
	state := "PENDING"
	if l.Paid {
		state = "PAID"
	} else if l.Voided {
		state = "VOIDED"
	}
	desc := l.Description
	if desc == "" {
		desc = "-"
	}

	lines := []string{
		fmt.Sprintf("Receipt / Ticket - PaymentLink %s", l.ID),
		fmt.Sprintf("Client: %s", clientName),
		fmt.Sprintf("Date: %s", l.CreatedAt.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Description: %s", desc),
		fmt.Sprintf("Net amount: %s", l.NetAmount.StringFixed(2)),
		fmt.Sprintf("Card type: %s", l.CardType),
		fmt.Sprintf("Installments: %d", l.Installments),
		fmt.Sprintf("Deduction percent: %s%%", l.DeductionPct.StringFixed(2)),
		fmt.Sprintf("Deduction amount: %s", l.DeductionAmt.StringFixed(2)),
		fmt.Sprintf("Total to receive: %s", l.ReceiverAmt.StringFixed(2)),
		fmt.Sprintf("Payment link: %s", l.PaymentURL),
		fmt.Sprintf("Payment state: %s", state),
	}
	return strings.Join(lines, "\n")
}

// DTOs for requests and responses

type CreateLinkRequest struct {
	NetAmount    decimal.Decimal `json:"net_amount" validate:"gt=0"`
	Installments int             `json:"installments" validate:"omitempty,gte=0"`
	CardType     string          `json:"card_type" validate:"required,oneof=debit credit"`
	Description  string          `json:"description" validate:"omitempty,max=500"`
}

type PreviewRequest struct {
	NetAmount    decimal.Decimal `json:"net_amount" validate:"gt=0"`
	Installments int             `json:"installments" validate:"omitempty,gte=0"`
	CardType     string          `json:"card_type" validate:"required,oneof=debit credit"`
}

type PreviewResponse struct {
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	DeductionPct decimal.Decimal `json:"deduction_pct"`
	DeductionAmt decimal.Decimal `json:"deduction_amount"`
	NetAmount    decimal.Decimal `json:"net_amount"`
}

type LinkListResponse struct {
	Links []*PaymentLink `json:"links"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
}

// PollResult reports the outcome of a status poll without forcing every
// non-terminal gateway answer into a mutation.
type PollResult struct {
	Status       string `json:"status"`
	Paid         bool   `json:"paid"`
	Installments int    `json:"installments"`
	Detail       string `json:"detail,omitempty"`
}
