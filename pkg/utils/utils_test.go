package utils

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1075.4769", "1075.48"},
		{"1075.475", "1075.48"}, // half rounds up
		{"1075.474", "1075.47"},
		{"0.005", "0.01"},
		{"10", "10"},
	}

	for _, tt := range tests {
		got := RoundMoney(decimal.RequireFromString(tt.input))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
			"RoundMoney(%s) = %s, want %s", tt.input, got, tt.expected)
	}
}

func TestRoundPercent(t *testing.T) {
	got := RoundPercent(decimal.RequireFromString("7.01805"))
	assert.True(t, got.Equal(decimal.RequireFromString("7.0181")))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(107548), ToMinorUnits(decimal.RequireFromString("1075.48")))
	assert.Equal(t, int64(1), ToMinorUnits(decimal.RequireFromString("0.01")))
	assert.Equal(t, int64(100), ToMinorUnits(decimal.RequireFromString("1")))

	assert.True(t, FromMinorUnits(107548).Equal(decimal.RequireFromString("1075.48")))
	assert.True(t, FromMinorUnits(ToMinorUnits(decimal.RequireFromString("42.42"))).
		Equal(decimal.RequireFromString("42.42")))
}

func TestNewOrderID(t *testing.T) {
	a := NewOrderID()
	b := NewOrderID()

	assert.True(t, strings.HasPrefix(a, "ORD-"))
	assert.Len(t, a, 24)
	assert.Equal(t, strings.ToUpper(a), a)
	assert.NotEqual(t, a, b)
}

func TestNewSessionToken(t *testing.T) {
	a := NewSessionToken()
	b := NewSessionToken()

	assert.Len(t, a, 72)
	assert.NotEqual(t, a, b)
}
