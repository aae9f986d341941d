package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/format"
)

// BoundsPolicy is a named set of business-rule bounds for calculator input.
// Every caller picks one explicitly; see StrictPolicy and PermissivePolicy.
type BoundsPolicy struct {
	Name      string
	MinAmount float64
	MaxAmount float64
	MinRate   float64
	MaxRate   float64
	MinTerm   int
	MaxTerm   int
}

// StrictPolicy returns the calculator's own bounds: rate within [5, 25].
func StrictPolicy() BoundsPolicy {
	return BoundsPolicy{
		Name:      constants.PolicyStrict,
		MinAmount: constants.MinLoanAmount,
		MaxAmount: constants.MaxLoanAmount,
		MinRate:   constants.StrictMinInterestRate,
		MaxRate:   constants.StrictMaxInterestRate,
		MinTerm:   constants.MinTermMonths,
		MaxTerm:   constants.MaxTermMonths,
	}
}

// PermissivePolicy returns the looser bounds: rate within [0.1, 50].
func PermissivePolicy() BoundsPolicy {
	return BoundsPolicy{
		Name:      constants.PolicyPermissive,
		MinAmount: constants.MinLoanAmount,
		MaxAmount: constants.MaxLoanAmount,
		MinRate:   constants.PermissiveMinInterestRate,
		MaxRate:   constants.PermissiveMaxInterestRate,
		MinTerm:   constants.MinTermMonths,
		MaxTerm:   constants.MaxTermMonths,
	}
}

// PolicyByName resolves a preset by name. An empty name yields the default.
func PolicyByName(name string) (BoundsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return PolicyByName(constants.DefaultPolicy)
	case constants.PolicyStrict:
		return StrictPolicy(), nil
	case constants.PolicyPermissive:
		return PermissivePolicy(), nil
	}
	return BoundsPolicy{}, fmt.Errorf("unknown validation policy %q, expected %s or %s",
		name, constants.PolicyStrict, constants.PolicyPermissive)
}

// LoanFields is possibly-incomplete calculator input. Nil numerics and empty
// strings mean the field was not supplied.
type LoanFields struct {
	LoanAmount     *float64
	InterestRate   *float64
	LoanTermMonths *int
	LoanPurpose    string
	SecurityType   string
}

// MinAmountMessage is reported when the amount is missing or too small.
func (p BoundsPolicy) MinAmountMessage() string {
	return fmt.Sprintf("Loan amount must be at least %s", format.Currency(p.MinAmount))
}

// MaxAmountMessage is reported when the amount is too large.
func (p BoundsPolicy) MaxAmountMessage() string {
	return fmt.Sprintf("Loan amount cannot exceed %s", format.Currency(p.MaxAmount))
}

// RateMessage is reported when the rate is missing or out of range.
func (p BoundsPolicy) RateMessage() string {
	return fmt.Sprintf("Interest rate must be between %g%% and %g%%", p.MinRate, p.MaxRate)
}

// TermMessage is reported when the term is missing or out of range.
func (p BoundsPolicy) TermMessage() string {
	return fmt.Sprintf("Loan term must be between %d and %d months", p.MinTerm, p.MaxTerm)
}

// Required-field and enumeration messages.
const (
	PurposeRequiredMessage  = "Loan purpose is required"
	SecurityRequiredMessage = "Security type is required"
)

// PurposeInvalidMessage is reported for an unknown loan purpose.
func PurposeInvalidMessage() string {
	return "Loan purpose must be one of: " + strings.Join(constants.LoanPurposes, ", ")
}

// SecurityInvalidMessage is reported for an unknown security type.
func SecurityInvalidMessage() string {
	return "Security type must be one of: " + strings.Join(constants.SecurityTypes, ", ")
}

// ValidateLoanInput runs every check against fields and returns all
// failures. An empty result means the input may be calculated.
func ValidateLoanInput(fields LoanFields, policy BoundsPolicy) []string {
	errs := []string{}

	amount, hasAmount := finite(fields.LoanAmount)
	if !hasAmount || amount < policy.MinAmount {
		errs = append(errs, policy.MinAmountMessage())
	}
	if hasAmount && amount > policy.MaxAmount {
		errs = append(errs, policy.MaxAmountMessage())
	}

	rate, hasRate := finite(fields.InterestRate)
	if !hasRate || rate < policy.MinRate || rate > policy.MaxRate {
		errs = append(errs, policy.RateMessage())
	}

	if fields.LoanTermMonths == nil || *fields.LoanTermMonths < policy.MinTerm || *fields.LoanTermMonths > policy.MaxTerm {
		errs = append(errs, policy.TermMessage())
	}

	switch {
	case fields.LoanPurpose == "":
		errs = append(errs, PurposeRequiredMessage)
	case !contains(constants.LoanPurposes, fields.LoanPurpose):
		errs = append(errs, PurposeInvalidMessage())
	}

	switch {
	case fields.SecurityType == "":
		errs = append(errs, SecurityRequiredMessage)
	case !contains(constants.SecurityTypes, fields.SecurityType):
		errs = append(errs, SecurityInvalidMessage())
	}

	return errs
}

// finite dereferences v, treating NaN and infinities as absent.
func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
