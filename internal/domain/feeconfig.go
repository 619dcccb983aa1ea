package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card types accepted by the pricing engine and the gateway
const (
	CardTypeDebit  = "debit"
	CardTypeCredit = "credit"
)

// FeeConfiguration holds the VAT rates and the base commission/surcharge
// percentages, split by card type. The latest record wins; pricing always
// runs against an explicit snapshot of this struct, never ambient state.
type FeeConfiguration struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	VATGeneral         decimal.Decimal `json:"vat_general" db:"vat_general"`
	VATFinancing       decimal.Decimal `json:"vat_financing" db:"vat_financing"`
	GatewayPctCredit   decimal.Decimal `json:"gateway_pct_credit" db:"gateway_pct_credit"`
	SurchargePctCredit decimal.Decimal `json:"surcharge_pct_credit" db:"surcharge_pct_credit"`
	GatewayPctDebit    decimal.Decimal `json:"gateway_pct_debit" db:"gateway_pct_debit"`
	SurchargePctDebit  decimal.Decimal `json:"surcharge_pct_debit" db:"surcharge_pct_debit"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// BasePercents returns the gateway and surcharge base percentages for a card type
func (f *FeeConfiguration) BasePercents(cardType string) (gateway, surcharge decimal.Decimal) {
	if cardType == CardTypeDebit {
		return f.GatewayPctDebit, f.SurchargePctDebit
	}
	return f.GatewayPctCredit, f.SurchargePctCredit
}

// InstallmentPlan is an admin-managed financing plan. Only active plans are
// selectable by clients; the installment count is unique among active plans.
type InstallmentPlan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Installments int             `json:"installments" db:"installments"`
	Label        string          `json:"label" db:"label"`
	BaseRate     decimal.Decimal `json:"base_rate" db:"base_rate"`
	Active       bool            `json:"active" db:"active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type UpdateFeeConfigurationRequest struct {
	VATGeneral         decimal.Decimal `json:"vat_general" validate:"gte=0"`
	VATFinancing       decimal.Decimal `json:"vat_financing" validate:"gte=0"`
	GatewayPctCredit   decimal.Decimal `json:"gateway_pct_credit" validate:"gte=0"`
	SurchargePctCredit decimal.Decimal `json:"surcharge_pct_credit" validate:"gte=0"`
	GatewayPctDebit    decimal.Decimal `json:"gateway_pct_debit" validate:"gte=0"`
	SurchargePctDebit  decimal.Decimal `json:"surcharge_pct_debit" validate:"gte=0"`
}

type UpsertInstallmentPlanRequest struct {
	Installments int             `json:"installments" validate:"required,gt=0"`
	Label        string          `json:"label" validate:"required,max=100"`
	BaseRate     decimal.Decimal `json:"base_rate" validate:"gte=0"`
	Active       bool            `json:"active"`
}
