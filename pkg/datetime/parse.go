// Package datetime provides the month arithmetic used to label schedule rows.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-quote/pkg/constants"
)

const (
	// DateTimeLayout is the format accepted for schedule start months and is
	// also the output label format.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// ValidateStartMonth checks that start is a YYYY-MM month.
func ValidateStartMonth(start string) error {
	if _, err := time.Parse(DateTimeLayout, start); err != nil {
		return fmt.Errorf("expected start month in YYYY-MM format, got %q", start)
	}
	return nil
}

// ScheduleLabels returns one YYYY-MM label per schedule month, with month 1
// falling on start.
func ScheduleLabels(start string, termMonths int) ([]string, error) {
	if err := ValidateStartMonth(start); err != nil {
		return nil, err
	}
	labels := make([]string, 0, termMonths)
	for month := 0; month < termMonths; month++ {
		label, err := OffsetDate(start, DateTimeLayout, month)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}
