// Package pricing implements the fee/coefficient engine: given the net amount
// a merchant wants to receive, it computes the gross amount to charge the end
// customer so that after gateway commission, platform surcharge, VAT and
// installment financing cost the merchant receives exactly the net amount.
// All functions are pure; the fee configuration is an explicit snapshot
// parameter.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lumapay/paylink/internal/domain"
	customError "github.com/lumapay/paylink/pkg/errors"
	"github.com/lumapay/paylink/pkg/utils"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Quote is the forward computation result. DeductionPct is quantized to
// 4 decimal places; money fields to 2.
type Quote struct {
	NetAmount    decimal.Decimal
	GrossAmount  decimal.Decimal
	DeductionPct decimal.Decimal
	DeductionAmt decimal.Decimal
	ReceiverAmt  decimal.Decimal
}

// Breakdown itemizes a persisted link's deduction for invoicing. The
// components always sum exactly to the stored deduction amount.
type Breakdown struct {
	GatewayFee     decimal.Decimal
	SurchargeFee   decimal.Decimal
	FinancingFee   decimal.Decimal
	GatewayVAT     decimal.Decimal
	SurchargeVAT   decimal.Decimal
	FinancingVAT   decimal.Decimal
	PerInstallment decimal.Decimal
}

// deductionPercent resolves the VAT-loaded total deduction percent for a
// card type and installment count. plan may be nil for debit or single
// installment credit.
func deductionPercent(cfg *domain.FeeConfiguration, cardType string, installments int, plan *domain.InstallmentPlan) (total, gateway, surcharge, financing decimal.Decimal, err error) {
	gatewayBase, surchargeBase := cfg.BasePercents(cardType)

	vatFactor := one.Add(cfg.VATGeneral.Div(hundred))
	gateway = gatewayBase.Mul(vatFactor)
	surcharge = surchargeBase.Mul(vatFactor)

	financing = decimal.Zero
	if cardType == domain.CardTypeCredit && installments > 1 {
		if plan == nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
				customError.WrapPlanNotFound(installments)
		}
		financingFactor := one.Add(cfg.VATFinancing.Div(hundred))
		financing = plan.BaseRate.Mul(financingFactor)
	}

	total = gateway.Add(surcharge).Add(financing)
	if total.GreaterThanOrEqual(hundred) {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero,
			customError.WrapConfigInvalid(
				fmt.Sprintf("combined deduction percent %s reaches 100", total.StringFixed(4)))
	}
	return total, gateway, surcharge, financing, nil
}

// Forward computes the gross amount to charge so that the merchant receives
// net after all deductions. Debit forces a single installment and zero
// financing regardless of the requested count.
func Forward(net decimal.Decimal, cardType string, installments int, cfg *domain.FeeConfiguration, plan *domain.InstallmentPlan) (*Quote, error) {
	if net.LessThanOrEqual(decimal.Zero) {
		return nil, customError.NewValidationError("Net amount must be greater than zero.")
	}
	if cardType == domain.CardTypeDebit {
		installments = 1
	}

	total, _, _, _, err := deductionPercent(cfg, cardType, installments, plan)
	if err != nil {
		return nil, err
	}

	coefficient := one.Div(one.Sub(total.Div(hundred)))
	gross := utils.RoundMoney(net.Mul(coefficient))
	deduction := utils.RoundMoney(gross.Mul(total.Div(hundred)))
	receiver := gross.Sub(deduction)

	return &Quote{
		NetAmount:    utils.RoundMoney(net),
		GrossAmount:  gross,
		DeductionPct: utils.RoundPercent(total),
		DeductionAmt: deduction,
		ReceiverAmt:  receiver,
	}, nil
}

// Inverse recomputes the itemized deduction components from a persisted
// link's gross and deduction amounts. Gateway and surcharge components are
// derived independently from gross; the remainder against the stored
// deduction lands in the financing component so the sum invariant holds.
// With a single installment the financing component is zero and the
// remainder folds into the surcharge component instead.
func Inverse(link *domain.PaymentLink, cfg *domain.FeeConfiguration) (*Breakdown, error) {
	installments := link.Installments
	if installments < 1 {
		installments = 1
	}

	gatewayBase, surchargeBase := cfg.BasePercents(link.CardType)
	vatFactor := one.Add(cfg.VATGeneral.Div(hundred))
	financingFactor := one.Add(cfg.VATFinancing.Div(hundred))

	gatewayFee := utils.RoundMoney(link.GrossAmount.Mul(gatewayBase.Mul(vatFactor)).Div(hundred))

	var surchargeFee, financingFee decimal.Decimal
	if link.CardType == domain.CardTypeCredit && installments > 1 {
		surchargeFee = utils.RoundMoney(link.GrossAmount.Mul(surchargeBase.Mul(vatFactor)).Div(hundred))
		financingFee = link.DeductionAmt.Sub(gatewayFee).Sub(surchargeFee)
	} else {
		surchargeFee = link.DeductionAmt.Sub(gatewayFee)
		financingFee = decimal.Zero
	}

	return &Breakdown{
		GatewayFee:     gatewayFee,
		SurchargeFee:   surchargeFee,
		FinancingFee:   financingFee,
		GatewayVAT:     embeddedVAT(gatewayFee, vatFactor),
		SurchargeVAT:   embeddedVAT(surchargeFee, vatFactor),
		FinancingVAT:   embeddedVAT(financingFee, financingFactor),
		PerInstallment: utils.RoundMoney(link.GrossAmount.Div(decimal.NewFromInt(int64(installments)))),
	}, nil
}

// embeddedVAT splits the VAT share out of a VAT-inclusive component
func embeddedVAT(component, factor decimal.Decimal) decimal.Decimal {
	return utils.RoundMoney(component.Sub(component.Div(factor)))
}

// Total returns the breakdown components summed back together
func (b *Breakdown) Total() decimal.Decimal {
	return b.GatewayFee.Add(b.SurchargeFee).Add(b.FinancingFee)
}
