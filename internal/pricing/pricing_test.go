package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapay/paylink/internal/domain"
	customError "github.com/lumapay/paylink/pkg/errors"
)

func testConfig() *domain.FeeConfiguration {
	return &domain.FeeConfiguration{
		VATGeneral:         decimal.RequireFromString("21.00"),
		VATFinancing:       decimal.RequireFromString("10.50"),
		GatewayPctCredit:   decimal.RequireFromString("4.00"),
		SurchargePctCredit: decimal.RequireFromString("1.80"),
		GatewayPctDebit:    decimal.RequireFromString("3.49"),
		SurchargePctDebit:  decimal.RequireFromString("0.80"),
	}
}

func testPlan(installments int, rate string) *domain.InstallmentPlan {
	return &domain.InstallmentPlan{
		Installments: installments,
		BaseRate:     decimal.RequireFromString(rate),
		Active:       true,
	}
}

func TestForwardSingleInstallmentCredit(t *testing.T) {
	// VAT-loaded gateway 4.84 + surcharge 2.178 = 7.018 total
	quote, err := Forward(decimal.RequireFromString("1000.00"), domain.CardTypeCredit, 1, testConfig(), nil)

	require.NoError(t, err)
	assert.True(t, quote.DeductionPct.Equal(decimal.RequireFromString("7.018")),
		"deduction pct = %s", quote.DeductionPct)
	assert.True(t, quote.GrossAmount.Equal(decimal.RequireFromString("1075.48")),
		"gross = %s", quote.GrossAmount)
	assert.True(t, quote.DeductionAmt.Equal(decimal.RequireFromString("75.48")),
		"deduction = %s", quote.DeductionAmt)
	assert.True(t, quote.ReceiverAmt.Equal(decimal.RequireFromString("1000.00")),
		"receiver = %s", quote.ReceiverAmt)
}

func TestForwardRoundTrip(t *testing.T) {
	// The merchant must receive the requested net back within one cent for
	// any amount, card type and installment count.
	tests := []struct {
		name         string
		net          string
		cardType     string
		installments int
		plan         *domain.InstallmentPlan
	}{
		{"credit single", "1000.00", domain.CardTypeCredit, 1, nil},
		{"credit three installments", "1500.00", domain.CardTypeCredit, 3, testPlan(3, "5.5000")},
		{"credit six installments", "999.99", domain.CardTypeCredit, 6, testPlan(6, "9.0000")},
		{"credit twelve installments", "20000.00", domain.CardTypeCredit, 12, testPlan(12, "18.2500")},
		{"debit", "250.50", domain.CardTypeDebit, 1, nil},
		{"small amount", "0.01", domain.CardTypeCredit, 1, nil},
		{"odd cents", "333.33", domain.CardTypeCredit, 3, testPlan(3, "5.5000")},
	}

	tolerance := decimal.RequireFromString("0.01")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := decimal.RequireFromString(tt.net)
			quote, err := Forward(net, tt.cardType, tt.installments, testConfig(), tt.plan)

			require.NoError(t, err)
			diff := quote.ReceiverAmt.Sub(net).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance),
				"net %s came back as %s (gross %s)", net, quote.ReceiverAmt, quote.GrossAmount)
			assert.True(t, quote.GrossAmount.Sub(quote.DeductionAmt).Equal(quote.ReceiverAmt))
		})
	}
}

func TestForwardDebitForcesSingleInstallment(t *testing.T) {
	// Requested installments are ignored for debit; no plan is needed
	quote, err := Forward(decimal.RequireFromString("500.00"), domain.CardTypeDebit, 6, testConfig(), nil)

	require.NoError(t, err)
	// 3.49*1.21 + 0.80*1.21 = 4.2229 + 0.968 = 5.1909, no financing
	assert.True(t, quote.DeductionPct.Equal(decimal.RequireFromString("5.1909")),
		"deduction pct = %s", quote.DeductionPct)
}

func TestForwardCreditRequiresPlan(t *testing.T) {
	_, err := Forward(decimal.RequireFromString("100.00"), domain.CardTypeCredit, 6, testConfig(), nil)

	require.Error(t, err)
	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodePlanNotFound, bizErr.Code)
}

func TestForwardRejectsNonPositiveNet(t *testing.T) {
	for _, net := range []string{"0", "-10.00"} {
		_, err := Forward(decimal.RequireFromString(net), domain.CardTypeCredit, 1, testConfig(), nil)

		require.Error(t, err)
		_, ok := customError.AsValidation(err)
		assert.True(t, ok, "expected a validation error for net %s, got %v", net, err)
	}
}

func TestForwardRejectsExcessiveDeduction(t *testing.T) {
	cfg := testConfig()
	cfg.GatewayPctCredit = decimal.RequireFromString("60.00")
	cfg.SurchargePctCredit = decimal.RequireFromString("50.00")

	_, err := Forward(decimal.RequireFromString("100.00"), domain.CardTypeCredit, 1, cfg, nil)

	require.Error(t, err)
	var bizErr *customError.BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, customError.ErrCodeConfigInvalid, bizErr.Code)
}

func linkFromQuote(q *Quote, cardType string, installments int) *domain.PaymentLink {
	return &domain.PaymentLink{
		NetAmount:    q.NetAmount,
		GrossAmount:  q.GrossAmount,
		CardType:     cardType,
		Installments: installments,
		DeductionPct: q.DeductionPct,
		DeductionAmt: q.DeductionAmt,
		ReceiverAmt:  q.ReceiverAmt,
	}
}

func TestInverseComponentsSumToDeduction(t *testing.T) {
	tests := []struct {
		name         string
		net          string
		cardType     string
		installments int
		plan         *domain.InstallmentPlan
	}{
		{"credit single", "1000.00", domain.CardTypeCredit, 1, nil},
		{"credit three", "742.17", domain.CardTypeCredit, 3, testPlan(3, "5.5000")},
		{"credit six", "999.99", domain.CardTypeCredit, 6, testPlan(6, "9.0000")},
		{"credit twelve", "12345.67", domain.CardTypeCredit, 12, testPlan(12, "18.2500")},
		{"debit", "88.88", domain.CardTypeDebit, 1, nil},
	}

	cfg := testConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := Forward(decimal.RequireFromString(tt.net), tt.cardType, tt.installments, cfg, tt.plan)
			require.NoError(t, err)

			installments := tt.installments
			if tt.cardType == domain.CardTypeDebit {
				installments = 1
			}
			breakdown, err := Inverse(linkFromQuote(quote, tt.cardType, installments), cfg)
			require.NoError(t, err)

			// Components must sum back to the stored deduction exactly,
			// never within a tolerance
			assert.True(t, breakdown.Total().Equal(quote.DeductionAmt),
				"components sum to %s, stored deduction is %s", breakdown.Total(), quote.DeductionAmt)
		})
	}
}

func TestInverseSingleInstallmentHasNoFinancing(t *testing.T) {
	cfg := testConfig()
	quote, err := Forward(decimal.RequireFromString("1000.00"), domain.CardTypeCredit, 1, cfg, nil)
	require.NoError(t, err)

	breakdown, err := Inverse(linkFromQuote(quote, domain.CardTypeCredit, 1), cfg)
	require.NoError(t, err)

	assert.True(t, breakdown.FinancingFee.IsZero(), "financing = %s", breakdown.FinancingFee)
	assert.True(t, breakdown.FinancingVAT.IsZero())
	assert.True(t, breakdown.GatewayFee.Add(breakdown.SurchargeFee).Equal(quote.DeductionAmt))
}

func TestInverseMultiInstallmentRemainderInFinancing(t *testing.T) {
	cfg := testConfig()
	plan := testPlan(6, "9.0000")
	quote, err := Forward(decimal.RequireFromString("1000.00"), domain.CardTypeCredit, 6, cfg, plan)
	require.NoError(t, err)

	breakdown, err := Inverse(linkFromQuote(quote, domain.CardTypeCredit, 6), cfg)
	require.NoError(t, err)

	// Gateway and surcharge are independently rounded from gross; whatever
	// cent is left over lands in the financing component
	gateway := quote.GrossAmount.Mul(decimal.RequireFromString("4.84")).Div(decimal.NewFromInt(100)).Round(2)
	surcharge := quote.GrossAmount.Mul(decimal.RequireFromString("2.178")).Div(decimal.NewFromInt(100)).Round(2)
	assert.True(t, breakdown.GatewayFee.Equal(gateway))
	assert.True(t, breakdown.SurchargeFee.Equal(surcharge))
	assert.True(t, breakdown.FinancingFee.Equal(quote.DeductionAmt.Sub(gateway).Sub(surcharge)))
}

func TestInversePerInstallment(t *testing.T) {
	cfg := testConfig()
	link := &domain.PaymentLink{
		GrossAmount:  decimal.RequireFromString("1204.28"),
		CardType:     domain.CardTypeCredit,
		Installments: 6,
		DeductionAmt: decimal.RequireFromString("204.28"),
	}

	breakdown, err := Inverse(link, cfg)
	require.NoError(t, err)

	assert.True(t, breakdown.PerInstallment.Equal(decimal.RequireFromString("200.71")),
		"per installment = %s", breakdown.PerInstallment)
}

func TestInverseEmbeddedVAT(t *testing.T) {
	cfg := testConfig()
	quote, err := Forward(decimal.RequireFromString("1000.00"), domain.CardTypeCredit, 1, cfg, nil)
	require.NoError(t, err)

	breakdown, err := Inverse(linkFromQuote(quote, domain.CardTypeCredit, 1), cfg)
	require.NoError(t, err)

	// VAT share of a VAT-inclusive component: c - c/1.21
	factor := decimal.RequireFromString("1.21")
	expected := breakdown.GatewayFee.Sub(breakdown.GatewayFee.Div(factor)).Round(2)
	assert.True(t, breakdown.GatewayVAT.Equal(expected),
		"gateway VAT = %s, want %s", breakdown.GatewayVAT, expected)
}
