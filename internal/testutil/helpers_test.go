package testutil

import (
	"testing"

	"github.com/iwvelando/loan-quote/internal/quote"
	"github.com/iwvelando/loan-quote/pkg/loans"
	"github.com/iwvelando/loan-quote/pkg/validation"
)

func TestValidInput(t *testing.T) {
	input := ValidInput()
	if errs := quote.NewEngine(nil, validation.StrictPolicy(), quote.DefaultRateTables()).Validate(input.Fields()); len(errs) != 0 {
		t.Errorf("ValidInput() should pass validation, got %v", errs)
	}
}

func TestFindEntry(t *testing.T) {
	schedule := []loans.AmortizationEntry{
		{Month: 1, Payment: 100, Balance: 900},
		{Month: 2, Payment: 100, Balance: 800},
		{Month: 3, Payment: 100, Balance: 700},
	}

	tests := []struct {
		name            string
		month           int
		expectFound     bool
		expectedBalance float64
	}{
		{"First month", 1, true, 900},
		{"Last month", 3, true, 700},
		{"Month zero", 0, false, 0},
		{"Past the term", 4, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindEntry(schedule, tt.month)

			if tt.expectFound {
				if result == nil {
					t.Errorf("FindEntry() expected to find month %d but got nil", tt.month)
					return
				}
				if result.Balance != tt.expectedBalance {
					t.Errorf("FindEntry() returned balance %v, expected %v", result.Balance, tt.expectedBalance)
				}
			} else if result != nil {
				t.Errorf("FindEntry() expected nil for month %d but got %+v", tt.month, result)
			}
		})
	}
}

func TestFindEntryNilSchedule(t *testing.T) {
	if result := FindEntry(nil, 1); result != nil {
		t.Errorf("FindEntry() with nil schedule should return nil, got %v", result)
	}
}

func TestFindEntryReturnsPointer(t *testing.T) {
	schedule := []loans.AmortizationEntry{{Month: 1, Balance: 900}}

	found := FindEntry(schedule, 1)
	if found == nil {
		t.Fatalf("FindEntry() returned nil")
	}
	if &schedule[0] != found {
		t.Errorf("FindEntry() should return pointer to original element")
	}
}

func TestFindLender(t *testing.T) {
	lenders := quote.DefaultRateTables().Lenders

	found := FindLender(lenders, "Westpac")
	if found == nil {
		t.Fatalf("FindLender() returned nil for Westpac")
	}
	if found.ComparisonRate != 10.25 {
		t.Errorf("FindLender() returned %+v", found)
	}

	if FindLender(lenders, "westpac") != nil {
		t.Errorf("FindLender() should be case sensitive")
	}
	if FindLender(nil, "Westpac") != nil {
		t.Errorf("FindLender() with nil lenders should return nil")
	}
}
