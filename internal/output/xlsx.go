package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names used by WriteXLSX.
const (
	SummarySheet  = "Summary"
	ScheduleSheet = "Schedule"
)

// XLSXContentType is the media type of the workbook WriteXLSX produces.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSX builds a workbook with a summary sheet and, when the result carries
// one, an amortization schedule sheet.
func XLSX(report Report) (*bytes.Buffer, error) {
	labels, err := report.labels()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}

	in, res := report.Input, report.Result
	summary := [][]any{
		{"Loan amount", in.LoanAmount},
		{"Interest rate (%)", in.InterestRate},
		{"Term (months)", in.LoanTermMonths},
		{"Purpose", string(in.LoanPurpose)},
		{"Security", string(in.SecurityType)},
		{"Monthly payment", res.MonthlyPayment},
		{"Total interest", res.TotalInterest},
		{"Total amount", res.TotalAmount},
		{"Effective rate (%)", res.EffectiveRate},
	}
	if s := report.Savings; s != nil {
		summary = append(summary,
			[]any{"Average bank rate (%)", s.AvgBankRate},
			[]any{"Average bank payment", s.AvgBankPayment},
			[]any{"Monthly savings", s.MonthlySavings},
		)
	}
	for rowIdx, row := range summary {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			_ = f.SetCellValue(SummarySheet, cell, value)
		}
	}

	if len(res.AmortizationSchedule) > 0 {
		if _, err := f.NewSheet(ScheduleSheet); err != nil {
			return nil, fmt.Errorf("failed to create schedule sheet: %w", err)
		}

		headers := []string{"Month"}
		if labels != nil {
			headers = append(headers, "Date")
		}
		for _, col := range scheduleColumns {
			headers = append(headers, col.Header)
		}
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(ScheduleSheet, cell, header)
		}

		for i, entry := range res.AmortizationSchedule {
			rowIdx := i + 2
			values := []any{entry.Month}
			if labels != nil {
				values = append(values, labels[i])
			}
			for _, col := range scheduleColumns {
				values = append(values, col.Value(entry))
			}
			for colIdx, value := range values {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
				_ = f.SetCellValue(ScheduleSheet, cell, value)
			}
		}
	}

	return f.WriteToBuffer()
}

// WriteXLSX writes the workbook built by XLSX to w.
func WriteXLSX(w io.Writer, report Report) error {
	buf, err := XLSX(report)
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}
