/*
Package report builds spreadsheet exports of payroll data.

One sheet, one row per worker with earned/paid/balance columns and a
totals row at the bottom. Balances come from the same aggregation the
dashboard uses, so the export always matches what the screen shows.
*/
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/woodline/sitebook/ledger"
)

const payrollSheet = "Payroll"

// BuildPayroll renders worker summaries into a workbook.
func BuildPayroll(summaries []ledger.WorkerSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return nil, err
	}

	headers := []string{"Worker", "Days Marked", "Earned", "Paid", "Balance"}
	for i, hdr := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(payrollSheet, cell, hdr); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(payrollSheet, "A1", "E1", headerStyle); err != nil {
		return nil, err
	}

	totalEarned := ledger.Rupees(0)
	totalPaid := ledger.Rupees(0)
	totalBalance := ledger.Rupees(0)

	for i, s := range summaries {
		row := i + 2
		values := []any{s.WorkerName, s.DaysMarked, s.TotalEarned.String(), s.TotalPaid.String(), s.Balance.String()}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(payrollSheet, cell, v); err != nil {
				return nil, err
			}
		}
		totalEarned = totalEarned.Add(s.TotalEarned)
		totalPaid = totalPaid.Add(s.TotalPaid)
		totalBalance = totalBalance.Add(s.Balance)
	}

	totalRow := len(summaries) + 2
	totals := []any{"Total", "", totalEarned.String(), totalPaid.String(), totalBalance.String()}
	for col, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(col+1, totalRow)
		if err := f.SetCellValue(payrollSheet, cell, v); err != nil {
			return nil, err
		}
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	start, _ := excelize.CoordinatesToCellName(1, totalRow)
	end, _ := excelize.CoordinatesToCellName(5, totalRow)
	if err := f.SetCellStyle(payrollSheet, start, end, boldStyle); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(payrollSheet, "A", "A", 24); err != nil {
		return nil, err
	}
	return f, nil
}

// SheetName exposes the payroll sheet name for callers reading back cells.
func SheetName() string { return payrollSheet }

// CellValue is a small convenience for tests.
func CellValue(f *excelize.File, col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	v, err := f.GetCellValue(payrollSheet, cell)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", cell, err)
	}
	return v, nil
}
