package services_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"
)

func newReportFixture(t *testing.T) (*fixture, *services.ReportService, time.Time, time.Time) {
	t.Helper()
	f := newFixture(t)

	appendAt(t, f, time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local), domain.Transaction{
		BillID:       "B-1",
		CustomerName: "Asha",
		Type:         domain.TxBillCreated,
		Amount:       10000,
		Description:  "Bill B-1 created",
	})
	appendAt(t, f, time.Date(2024, 6, 15, 14, 30, 0, 0, time.Local), domain.Transaction{
		BillID:       "B-1",
		CustomerName: "Asha",
		Type:         domain.TxInterestPaid,
		Amount:       200,
		Description:  "Interest payment for Bill #B-1",
	})

	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return f, services.NewReportService(f.dayBook, zap.NewNop()), start, end
}

func TestCSVExport(t *testing.T) {
	_, reports, start, end := newReportFixture(t)

	out, err := reports.CSV(start, end)
	require.NoError(t, err)

	// Excel needs the BOM to read UTF-8 names.
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))

	rows, err := csv.NewReader(bytes.NewReader(out[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Date", "Bill No", "Customer", "Type", "Amount", "Description"}, rows[0])
	// Newest first, matching the on-screen day book.
	assert.Equal(t, "interest_paid", rows[1][3])
	assert.Equal(t, "200.00", rows[1][4])
	assert.Equal(t, "bill_created", rows[2][3])
	assert.Equal(t, "2024-06-15 09:00", rows[2][0])
}

func TestXLSXExport(t *testing.T) {
	_, reports, start, end := newReportFixture(t)

	out, err := reports.XLSX(start, end)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Day Book"}, wb.GetSheetList())

	header, err := wb.GetCellValue("Day Book", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	billNo, err := wb.GetCellValue("Day Book", "B2")
	require.NoError(t, err)
	assert.Equal(t, "B-1", billNo)

	totalInLabel, err := wb.GetCellValue("Day Book", "D5")
	require.NoError(t, err)
	assert.Equal(t, "Total In", totalInLabel)
	totalIn, err := wb.GetCellValue("Day Book", "E5")
	require.NoError(t, err)
	assert.Equal(t, "200", totalIn)
}

func TestExportFilename(t *testing.T) {
	_, reports, _, _ := newReportFixture(t)

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "daybook_20240615.csv", reports.Filename("csv", day, day.Add(23*time.Hour)))
	assert.Equal(t, "daybook_20240615_20240620.xlsx", reports.Filename("xlsx", day, day.AddDate(0, 0, 5)))
}
