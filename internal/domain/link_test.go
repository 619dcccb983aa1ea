package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentLinkStatus(t *testing.T) {
	assert.Equal(t, LinkStatusPending, (&PaymentLink{}).Status())
	assert.Equal(t, LinkStatusPaid, (&PaymentLink{Paid: true}).Status())
	assert.Equal(t, LinkStatusVoided, (&PaymentLink{Voided: true}).Status())
	// Paid wins if both flags are somehow set
	assert.Equal(t, LinkStatusPaid, (&PaymentLink{Paid: true, Voided: true}).Status())
}

func TestBuildInvoiceText(t *testing.T) {
	link := &PaymentLink{
		NetAmount:    decimal.RequireFromString("1000.00"),
		CardType:     CardTypeCredit,
		Installments: 3,
		DeductionPct: decimal.RequireFromString("13.0955"),
		DeductionAmt: decimal.RequireFromString("150.63"),
		ReceiverAmt:  decimal.RequireFromString("1000.00"),
		PaymentURL:   "https://pay.example/o/1",
		Paid:         true,
		CreatedAt:    time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	text := link.BuildInvoiceText("Comercio Uno")

	assert.Contains(t, text, "Client: Comercio Uno")
	assert.Contains(t, text, "Date: 2025-03-01 10:30:00")
	assert.Contains(t, text, "Description: -")
	assert.Contains(t, text, "Net amount: 1000.00")
	assert.Contains(t, text, "Installments: 3")
	assert.Contains(t, text, "Deduction percent: 13.10%")
	assert.Contains(t, text, "Payment state: PAID")
}

func TestClientCanLogin(t *testing.T) {
	assert.False(t, (&Client{}).CanLogin())
	assert.False(t, (&Client{Approved: true, Blocked: true}).CanLogin())
	assert.True(t, (&Client{Approved: true}).CanLogin())
}
