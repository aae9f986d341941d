package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRateTables(t *testing.T) {
	tables := DefaultRateTables()

	require.Len(t, tables.PurposeRates, 4)
	for _, purpose := range []LoanPurpose{PurposeBusiness, PurposeInvestment, PurposeProperty, PurposeWorkingCapital} {
		rate, ok := tables.PurposeRates[purpose]
		require.True(t, ok, "missing rate for %s", purpose)
		assert.GreaterOrEqual(t, rate, 8.75)
		assert.LessOrEqual(t, rate, 9.45)
	}

	require.Len(t, tables.Lenders, 5)
	aagt := 0
	for _, lender := range tables.Lenders {
		if lender.IsAAGT {
			aagt++
		}
		assert.NotEmpty(t, lender.Lender)
		assert.GreaterOrEqual(t, lender.ComparisonRate, lender.Rate)
	}
	assert.Equal(t, 1, aagt)
}

func TestRateTablesClone(t *testing.T) {
	original := DefaultRateTables()
	clone := original.Clone()

	clone.PurposeRates[PurposeBusiness] = 99
	clone.Lenders[0].Rate = 99

	assert.Equal(t, 8.95, original.PurposeRates[PurposeBusiness])
	assert.Equal(t, 8.95, original.Lenders[0].Rate)
}

func TestCalculateSavingsVsBanks(t *testing.T) {
	input := scenarioInput()
	result := CalculateLoan(input)

	savings := CalculateSavingsVsBanks(result, input, DefaultRateTables().Lenders)

	// Average of the four bank comparison rates.
	assert.InDelta(t, 10.19, savings.AvgBankRate, 1e-9)
	assert.InDelta(t, 4888.22, savings.AvgBankPayment, 0.01)
	assert.InDelta(t, 405.66, savings.MonthlySavings, 0.01)
	assert.Equal(t, 1, savings.TimeToApprovalDays)
	assert.Equal(t, 4, savings.SettlementDays)
}

func TestCalculateSavingsVsBanksIgnoresAAGT(t *testing.T) {
	input := scenarioInput()
	result := CalculateLoan(input)

	lenders := []ComparisonRate{
		{Lender: "AAGT", ComparisonRate: 1, IsAAGT: true},
		{Lender: "Bank", ComparisonRate: 8.95},
	}
	savings := CalculateSavingsVsBanks(result, input, lenders)

	assert.InDelta(t, 8.95, savings.AvgBankRate, 1e-9)
	assert.InDelta(t, 0, savings.MonthlySavings, 0.01)
}

func TestCalculateSavingsVsBanksWithoutBanks(t *testing.T) {
	input := scenarioInput()
	savings := CalculateSavingsVsBanks(CalculateLoan(input), input, []ComparisonRate{{Lender: "AAGT", IsAAGT: true}})

	assert.Zero(t, savings.AvgBankPayment)
	assert.Zero(t, savings.MonthlySavings)
	assert.Equal(t, 1, savings.TimeToApprovalDays)
	assert.Equal(t, 4, savings.SettlementDays)
}
