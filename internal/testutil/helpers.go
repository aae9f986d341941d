// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/loan-quote/internal/quote"
	"github.com/iwvelando/loan-quote/pkg/loans"
)

// ValidInput returns the reference quote request: $500,000 at 8.95% over
// 240 months for a business loan secured by property.
func ValidInput() quote.Input {
	return quote.Input{
		LoanAmount:     500000,
		InterestRate:   8.95,
		LoanTermMonths: 240,
		LoanPurpose:    quote.PurposeBusiness,
		SecurityType:   quote.SecurityProperty,
	}
}

// FindEntry finds a schedule entry by month number.
// Returns a pointer to the entry if found, nil otherwise.
func FindEntry(schedule []loans.AmortizationEntry, month int) *loans.AmortizationEntry {
	for i := range schedule {
		if schedule[i].Month == month {
			return &schedule[i]
		}
	}
	return nil
}

// FindLender finds a comparison rate by lender name.
// Returns a pointer to the lender if found, nil otherwise.
func FindLender(lenders []quote.ComparisonRate, name string) *quote.ComparisonRate {
	for i := range lenders {
		if lenders[i].Lender == name {
			return &lenders[i]
		}
	}
	return nil
}
