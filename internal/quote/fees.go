package quote

import (
	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/mathutil"
)

// Fees are the one-off costs charged when a loan settles.
type Fees struct {
	Establishment float64 `json:"establishment"`
	Legal         float64 `json:"legal"`
	Valuation     float64 `json:"valuation"`
}

// Total sums every fee.
func (f Fees) Total() float64 {
	return f.Establishment + f.Legal + f.Valuation
}

// GetBaseFees derives the fee schedule from the loan amount and security.
func GetBaseFees(input Input) Fees {
	valuation := constants.StandardValuationFee
	if input.SecurityType == SecurityProperty {
		valuation = constants.PropertyValuationFee
	}
	return Fees{
		Establishment: mathutil.Min(input.LoanAmount*constants.EstablishmentFeeRate, constants.EstablishmentFeeCap),
		Legal:         mathutil.Min(input.LoanAmount*constants.LegalFeeRate, constants.LegalFeeCap),
		Valuation:     valuation,
	}
}

// CalculateEffectiveRate inflates the nominal rate by the fees spread over
// the term in years. When fees consume the whole principal the nominal rate
// is returned unchanged.
func CalculateEffectiveRate(input Input) float64 {
	totalFees := GetBaseFees(input).Total()
	netLoanAmount := input.LoanAmount - totalFees
	if netLoanAmount <= 0 {
		return input.InterestRate
	}

	feeImpact := totalFees / netLoanAmount * constants.PercentageMultiplier
	termYears := float64(input.LoanTermMonths) / constants.MonthsPerYear
	return input.InterestRate + feeImpact/termYears
}
