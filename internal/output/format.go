// Package output provides utilities for formatting and displaying loan quotes.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/iwvelando/loan-quote/internal/quote"
	"github.com/iwvelando/loan-quote/pkg/constants"
	"github.com/iwvelando/loan-quote/pkg/datetime"
	"github.com/iwvelando/loan-quote/pkg/format"
	"github.com/iwvelando/loan-quote/pkg/loans"
)

// Report is everything a rendering may show for one quote.
type Report struct {
	Input   quote.Input    `json:"input"`
	Result  quote.Result   `json:"result"`
	Savings *quote.Savings `json:"savings,omitempty"`
	// StartMonth labels schedule rows with calendar months when set (YYYY-MM).
	StartMonth string `json:"startMonth,omitempty"`
}

type scheduleColumn struct {
	Header string
	Value  func(loans.AmortizationEntry) float64
}

var scheduleColumns = []scheduleColumn{
	{Header: "payment", Value: func(e loans.AmortizationEntry) float64 { return e.Payment }},
	{Header: "principal", Value: func(e loans.AmortizationEntry) float64 { return e.Principal }},
	{Header: "interest", Value: func(e loans.AmortizationEntry) float64 { return e.Interest }},
	{Header: "balance", Value: func(e loans.AmortizationEntry) float64 { return e.Balance }},
}

// labels returns the per-row calendar labels, or nil when no start month is
// set.
func (r Report) labels() ([]string, error) {
	if r.StartMonth == "" {
		return nil, nil
	}
	return datetime.ScheduleLabels(r.StartMonth, len(r.Result.AmortizationSchedule))
}

// Render writes report to w in the named output format.
func Render(w io.Writer, outputFormat string, report Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, report)
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, report Report) error {
	labels, err := report.labels()
	if err != nil {
		return err
	}

	in, res := report.Input, report.Result
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "--- Loan quote ---\n")
	fmt.Fprintf(tw, "Loan amount\t| %s\n", format.CurrencyCents(in.LoanAmount))
	fmt.Fprintf(tw, "Interest rate\t| %s\n", format.Percentage(in.InterestRate))
	fmt.Fprintf(tw, "Term\t| %d months\n", in.LoanTermMonths)
	fmt.Fprintf(tw, "Purpose\t| %s\n", in.LoanPurpose)
	fmt.Fprintf(tw, "Security\t| %s\n", in.SecurityType)
	fmt.Fprintf(tw, "Monthly payment\t| %s\n", format.CurrencyCents(res.MonthlyPayment))
	fmt.Fprintf(tw, "Total interest\t| %s\n", format.CurrencyCents(res.TotalInterest))
	fmt.Fprintf(tw, "Total amount\t| %s\n", format.CurrencyCents(res.TotalAmount))
	fmt.Fprintf(tw, "Effective rate\t| %s\n", format.Percentage(res.EffectiveRate))

	if s := report.Savings; s != nil {
		fmt.Fprintf(tw, "\n--- Compared with bank lenders ---\n")
		fmt.Fprintf(tw, "Average bank rate\t| %s\n", format.Percentage(s.AvgBankRate))
		fmt.Fprintf(tw, "Average bank payment\t| %s\n", format.CurrencyCents(s.AvgBankPayment))
		fmt.Fprintf(tw, "Monthly savings\t| %s\n", format.CurrencyCents(s.MonthlySavings))
		fmt.Fprintf(tw, "Time to approval\t| %d day(s)\n", s.TimeToApprovalDays)
		fmt.Fprintf(tw, "Settlement\t| %d day(s)\n", s.SettlementDays)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(res.AmortizationSchedule) == 0 {
		return nil
	}

	tw = tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "\n--- Amortization schedule ---\n")
	fmt.Fprintf(tw, "Month\t| Payment\t| Principal\t| Interest\t| Balance\t\n")
	for i, entry := range res.AmortizationSchedule {
		month := strconv.Itoa(entry.Month)
		if labels != nil {
			month = labels[i]
		}
		fmt.Fprintf(tw, "%s\t| %s\t| %s\t| %s\t| %s\t\n", month,
			format.CurrencyCents(entry.Payment),
			format.CurrencyCents(entry.Principal),
			format.CurrencyCents(entry.Interest),
			format.CurrencyCents(entry.Balance),
		)
	}
	return tw.Flush()
}

// CsvFormat outputs in comma-separated value format. With a schedule it
// writes one row per month; without one it writes a single summary row.
func CsvFormat(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	res := report.Result

	if len(res.AmortizationSchedule) == 0 {
		_ = cw.Write([]string{"loanAmount", "interestRate", "loanTermMonths", "monthlyPayment", "totalInterest", "totalAmount", "effectiveRate"})
		_ = cw.Write([]string{
			money(report.Input.LoanAmount),
			strconv.FormatFloat(report.Input.InterestRate, 'f', -1, 64),
			strconv.Itoa(report.Input.LoanTermMonths),
			money(res.MonthlyPayment),
			money(res.TotalInterest),
			money(res.TotalAmount),
			strconv.FormatFloat(res.EffectiveRate, 'f', 4, 64),
		})
		cw.Flush()
		return cw.Error()
	}

	labels, err := report.labels()
	if err != nil {
		return err
	}

	header := []string{"month"}
	if labels != nil {
		header = append(header, "date")
	}
	for _, col := range scheduleColumns {
		header = append(header, col.Header)
	}
	_ = cw.Write(header)

	for i, entry := range res.AmortizationSchedule {
		row := []string{strconv.Itoa(entry.Month)}
		if labels != nil {
			row = append(row, labels[i])
		}
		for _, col := range scheduleColumns {
			row = append(row, money(col.Value(entry)))
		}
		_ = cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
