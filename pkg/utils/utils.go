package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoundMoney quantizes an amount to 2 decimal places, half-up
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundPercent quantizes a percentage to 4 decimal places for storage.
// Intermediate arithmetic keeps full precision.
func RoundPercent(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// ToMinorUnits converts a 2-decimal currency amount to minor units (cents)
// for the gateway wire format.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromMinorUnits converts minor units back to a currency amount
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// NewOrderID generates a unique order identifier for the gateway.
// Uppercased hex keeps it readable on gateway dashboards.
func NewOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:20])
}

// NewSessionToken generates an opaque session token
func NewSessionToken() string {
	return uuid.NewString() + uuid.NewString()
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
