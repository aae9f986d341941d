// Package loans provides the amortization math behind every quote.
package loans

import (
	"math"

	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/mathutil"
	"go.uber.org/zap"
)

// AmortizationEntry holds the values for a given month of the schedule.
// Payment, Principal and Interest are rounded to cents; Balance is the
// remaining principal rounded to cents and never negative.
type AmortizationEntry struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// MonthlyRate converts a nominal annual percentage rate into the periodic
// monthly rate, e.g. 12 -> 0.01.
func MonthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / constants.PercentageMultiplier / constants.MonthsPerYear
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula. The result is not rounded.
func CalculateMonthlyPayment(principal, monthlyRate float64, termMonths int) float64 {
	if monthlyRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	power := math.Pow(1.00+monthlyRate, float64(termMonths))
	return principal * monthlyRate * power / (power - 1.00)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, monthlyRate float64) float64 {
	return remainingPrincipal * monthlyRate
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule of termMonths
// entries. The unrounded balance carries between months so rounding error
// does not accumulate.
func (g *AmortizationScheduleGenerator) GenerateSchedule(principal, monthlyRate, monthlyPayment float64, termMonths int) []AmortizationEntry {
	if termMonths <= 0 {
		return []AmortizationEntry{}
	}

	schedule := make([]AmortizationEntry, 0, termMonths)
	remainingBalance := principal

	for month := 1; month <= termMonths; month++ {
		interest := CalculateInterestPayment(remainingBalance, monthlyRate)
		principalPortion := monthlyPayment - interest
		remainingBalance -= principalPortion

		if remainingBalance < 0 && month == termMonths {
			g.logger.Debug("clamping terminal balance drift",
				zap.String("op", "loans.GenerateSchedule"),
				zap.Int("month", month),
				zap.Float64("balance", remainingBalance),
			)
		}

		schedule = append(schedule, AmortizationEntry{
			Month:     month,
			Payment:   mathutil.Round(monthlyPayment),
			Principal: mathutil.Round(principalPortion),
			Interest:  mathutil.Round(interest),
			Balance:   mathutil.Round(mathutil.Max(0, remainingBalance)),
		})
	}

	return schedule
}

// GenerateAmortizationSchedule is GenerateSchedule without logging.
func GenerateAmortizationSchedule(principal, monthlyRate, monthlyPayment float64, termMonths int) []AmortizationEntry {
	return NewAmortizationScheduleGenerator(nil).GenerateSchedule(principal, monthlyRate, monthlyPayment, termMonths)
}
