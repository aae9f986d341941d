package quote

import (
	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/loans"
	"github.com/iwvelando/loan-quote/pkg/mathutil"
)

// ComparisonRate is one lender's advertised pricing.
type ComparisonRate struct {
	Lender           string  `json:"lender"`
	Rate             float64 `json:"rate"`
	ComparisonRate   float64 `json:"comparisonRate"`
	EstablishmentFee float64 `json:"establishmentFee"`
	MaxLVR           float64 `json:"maxLvr"`
	IsAAGT           bool    `json:"isAAGT"`
}

// RateTables holds the static pricing data shown next to a quote. It is
// configuration, not market data.
type RateTables struct {
	PurposeRates map[LoanPurpose]float64
	Lenders      []ComparisonRate
}

// DefaultRateTables returns the built-in indicative rates.
func DefaultRateTables() RateTables {
	return RateTables{
		PurposeRates: map[LoanPurpose]float64{
			PurposeBusiness:       8.95,
			PurposeInvestment:     9.25,
			PurposeProperty:       8.75,
			PurposeWorkingCapital: 9.45,
		},
		Lenders: []ComparisonRate{
			{Lender: "AAGT Private Loans", Rate: 8.95, ComparisonRate: 9.15, EstablishmentFee: 5000, MaxLVR: 75, IsAAGT: true},
			{Lender: "Commonwealth Bank", Rate: 9.64, ComparisonRate: 10.12, EstablishmentFee: 2500, MaxLVR: 70},
			{Lender: "Westpac", Rate: 9.79, ComparisonRate: 10.25, EstablishmentFee: 2000, MaxLVR: 70},
			{Lender: "ANZ", Rate: 9.59, ComparisonRate: 10.08, EstablishmentFee: 2750, MaxLVR: 65},
			{Lender: "NAB", Rate: 9.85, ComparisonRate: 10.31, EstablishmentFee: 2250, MaxLVR: 70},
		},
	}
}

// Clone returns a deep copy so callers cannot mutate shared tables.
func (t RateTables) Clone() RateTables {
	clone := RateTables{
		PurposeRates: make(map[LoanPurpose]float64, len(t.PurposeRates)),
		Lenders:      make([]ComparisonRate, len(t.Lenders)),
	}
	for purpose, rate := range t.PurposeRates {
		clone.PurposeRates[purpose] = rate
	}
	copy(clone.Lenders, t.Lenders)
	return clone
}

// Savings compares a quote with the average bank offer.
type Savings struct {
	AvgBankRate        float64 `json:"avgBankRate"`
	AvgBankPayment     float64 `json:"avgBankPayment"`
	MonthlySavings     float64 `json:"monthlySavings"`
	TimeToApprovalDays int     `json:"timeToApprovalDays"`
	SettlementDays     int     `json:"settlementDays"`
}

// CalculateSavingsVsBanks prices the loan at the average comparison rate of
// every non-AAGT lender and reports the monthly difference against result.
// Without any bank lenders the payment and savings are zero.
func CalculateSavingsVsBanks(result Result, input Input, lenders []ComparisonRate) Savings {
	savings := Savings{
		TimeToApprovalDays: constants.TimeToApprovalDays,
		SettlementDays:     constants.SettlementDays,
	}

	var bankRates []float64
	for _, lender := range lenders {
		if !lender.IsAAGT {
			bankRates = append(bankRates, lender.ComparisonRate)
		}
	}
	if len(bankRates) == 0 {
		return savings
	}

	savings.AvgBankRate = mathutil.Mean(bankRates)
	avgBankPayment := loans.CalculateMonthlyPayment(input.LoanAmount, loans.MonthlyRate(savings.AvgBankRate), input.LoanTermMonths)
	savings.AvgBankPayment = mathutil.Round(avgBankPayment)
	savings.MonthlySavings = mathutil.Round(avgBankPayment - result.MonthlyPayment)
	return savings
}
