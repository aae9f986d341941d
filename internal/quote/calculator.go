package quote

import (
	"github.com/iwvelando/loan-quote/pkg/loans"
	"github.com/iwvelando/loan-quote/pkg/mathutil"
	"go.uber.org/zap"
)

// CalculateLoan computes the full quote for input. It does not validate:
// out-of-range input yields whatever the formulas produce.
func CalculateLoan(input Input) Result {
	return calculateLoan(nil, input)
}

func calculateLoan(logger *zap.Logger, input Input) Result {
	monthlyRate := loans.MonthlyRate(input.InterestRate)
	payment := loans.CalculateMonthlyPayment(input.LoanAmount, monthlyRate, input.LoanTermMonths)
	schedule := loans.NewAmortizationScheduleGenerator(logger).
		GenerateSchedule(input.LoanAmount, monthlyRate, payment, input.LoanTermMonths)

	monthlyPayment := mathutil.Round(payment)
	totalAmount := mathutil.Round(monthlyPayment * float64(input.LoanTermMonths))

	return Result{
		MonthlyPayment:       monthlyPayment,
		TotalInterest:        mathutil.Round(totalAmount - input.LoanAmount),
		TotalAmount:          totalAmount,
		AmortizationSchedule: schedule,
		EffectiveRate:        CalculateEffectiveRate(input),
	}
}
