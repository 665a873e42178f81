package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodline/sitebook/ledger"
)

func TestBuildPayroll_RowsAndTotals(t *testing.T) {
	// GIVEN: Two worker summaries
	// WHEN: Building the payroll workbook
	// THEN: One row each plus a bold totals row summing the money columns

	summaries := []ledger.WorkerSummary{
		{
			WorkerID: "w-1", WorkerName: "Ramesh", DaysMarked: 5,
			TotalEarned: ledger.Rupees(2500), TotalPaid: ledger.Rupees(1000), Balance: ledger.Rupees(1500),
		},
		{
			WorkerID: "w-2", WorkerName: "Suresh", DaysMarked: 3,
			TotalEarned: ledger.Rupees(1200), TotalPaid: ledger.Rupees(1500), Balance: ledger.Rupees(-300),
		},
	}

	f, err := BuildPayroll(summaries)
	require.NoError(t, err)
	defer f.Close()

	header, err := CellValue(f, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Worker", header)

	name, err := CellValue(f, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Ramesh", name)

	balance, err := CellValue(f, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, "-300", balance)

	totalLabel, err := CellValue(f, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, "Total", totalLabel)

	totalEarned, err := CellValue(f, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, "3700", totalEarned)

	totalBalance, err := CellValue(f, 5, 4)
	require.NoError(t, err)
	assert.Equal(t, "1200", totalBalance)
}

func TestBuildPayroll_EmptyInput(t *testing.T) {
	f, err := BuildPayroll(nil)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Payroll", SheetName())

	totalLabel, err := CellValue(f, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Total", totalLabel, "totals row sits right under the header")
}
