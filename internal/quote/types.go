// Package quote computes loan quotes: payment, totals, amortization schedule
// and the fee-adjusted effective rate, plus the static comparison tables the
// calculator is marketed against.
package quote

import (
	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/loans"
	"github.com/iwvelando/loan-quote/pkg/validation"
)

// LoanPurpose is what the borrower intends to use the funds for.
type LoanPurpose string

// Accepted loan purposes.
const (
	PurposeBusiness       LoanPurpose = constants.PurposeBusiness
	PurposeInvestment     LoanPurpose = constants.PurposeInvestment
	PurposeProperty       LoanPurpose = constants.PurposeProperty
	PurposeWorkingCapital LoanPurpose = constants.PurposeWorkingCapital
)

// SecurityType is the collateral offered against the loan.
type SecurityType string

// Accepted security types.
const (
	SecurityProperty          SecurityType = constants.SecurityProperty
	SecurityBusinessAssets    SecurityType = constants.SecurityBusinessAssets
	SecurityPersonalGuarantee SecurityType = constants.SecurityPersonalGuarantee
	SecurityOther             SecurityType = constants.SecurityOther
)

// Input is a complete calculator request.
type Input struct {
	LoanAmount     float64      `json:"loanAmount"`
	InterestRate   float64      `json:"interestRate"` // nominal annual percent
	LoanTermMonths int          `json:"loanTermMonths"`
	LoanPurpose    LoanPurpose  `json:"loanPurpose"`
	SecurityType   SecurityType `json:"securityType"`
}

// Fields exposes the input in the shape the validator works on.
func (in Input) Fields() validation.LoanFields {
	amount := in.LoanAmount
	rate := in.InterestRate
	term := in.LoanTermMonths
	return validation.LoanFields{
		LoanAmount:     &amount,
		InterestRate:   &rate,
		LoanTermMonths: &term,
		LoanPurpose:    string(in.LoanPurpose),
		SecurityType:   string(in.SecurityType),
	}
}

// InputFromFields converts validated fields into an Input. Callers must have
// validated fields first; missing numerics become zero.
func InputFromFields(fields validation.LoanFields) Input {
	in := Input{
		LoanPurpose:  LoanPurpose(fields.LoanPurpose),
		SecurityType: SecurityType(fields.SecurityType),
	}
	if fields.LoanAmount != nil {
		in.LoanAmount = *fields.LoanAmount
	}
	if fields.InterestRate != nil {
		in.InterestRate = *fields.InterestRate
	}
	if fields.LoanTermMonths != nil {
		in.LoanTermMonths = *fields.LoanTermMonths
	}
	return in
}

// Result is the outcome of CalculateLoan. Currency fields are rounded to
// cents; EffectiveRate keeps full precision.
type Result struct {
	MonthlyPayment       float64                   `json:"monthlyPayment"`
	TotalInterest        float64                   `json:"totalInterest"`
	TotalAmount          float64                   `json:"totalAmount"`
	AmortizationSchedule []loans.AmortizationEntry `json:"amortizationSchedule,omitempty"`
	EffectiveRate        float64                   `json:"effectiveRate"`
}

// WithoutSchedule returns a copy of r with the schedule dropped, for
// compact responses.
func (r Result) WithoutSchedule() Result {
	r.AmortizationSchedule = nil
	return r
}
