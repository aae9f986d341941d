package quote

import (
	"github.com/iwvelando/loan-quote/pkg/validation"
	"go.uber.org/zap"
)

// Engine is the validated entry point used by the CLI and HTTP server. It
// holds only immutable configuration and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	policy validation.BoundsPolicy
	tables RateTables
}

// NewEngine creates an engine bound to an explicit validation policy.
func NewEngine(logger *zap.Logger, policy validation.BoundsPolicy, tables RateTables) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, policy: policy, tables: tables.Clone()}
}

// Policy returns the bounds the engine validates against.
func (e *Engine) Policy() validation.BoundsPolicy {
	return e.policy
}

// Validate checks fields against the engine's policy.
func (e *Engine) Validate(fields validation.LoanFields) []string {
	return validation.ValidateLoanInput(fields, e.policy)
}

// Quote validates fields and, only when they pass, calculates the result.
// A non-empty message slice means no result was computed.
func (e *Engine) Quote(fields validation.LoanFields) (Result, []string) {
	if errs := e.Validate(fields); len(errs) > 0 {
		e.logger.Debug("quote rejected",
			zap.String("op", "quote.Quote"),
			zap.String("policy", e.policy.Name),
			zap.Strings("errors", errs),
		)
		return Result{}, errs
	}

	return e.Calculate(InputFromFields(fields)), nil
}

// Calculate computes the result for input the caller has already validated
// against Policy, logging through the engine's logger.
func (e *Engine) Calculate(input Input) Result {
	result := calculateLoan(e.logger, input)
	e.logger.Debug("quote computed",
		zap.String("op", "quote.Calculate"),
		zap.String("policy", e.policy.Name),
		zap.Float64("loanAmount", input.LoanAmount),
		zap.Float64("interestRate", input.InterestRate),
		zap.Int("loanTermMonths", input.LoanTermMonths),
		zap.Float64("monthlyPayment", result.MonthlyPayment),
	)
	return result
}

// AAGTRates returns a copy of the indicative rate per loan purpose.
func (e *Engine) AAGTRates() map[LoanPurpose]float64 {
	return e.tables.Clone().PurposeRates
}

// RateForPurpose looks up the indicative rate for a purpose.
func (e *Engine) RateForPurpose(purpose LoanPurpose) (float64, bool) {
	rate, ok := e.tables.PurposeRates[purpose]
	return rate, ok
}

// BankComparisonRates returns a copy of the lender comparison list.
func (e *Engine) BankComparisonRates() []ComparisonRate {
	return e.tables.Clone().Lenders
}

// SavingsVsBanks compares result against the configured bank lenders.
func (e *Engine) SavingsVsBanks(result Result, input Input) Savings {
	return CalculateSavingsVsBanks(result, input, e.tables.Lenders)
}
