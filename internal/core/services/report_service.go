package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService renders the day book as downloadable spreadsheets.
type ReportService struct {
	dayBook *DayBookService
	log     *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(dayBook *DayBookService, log *zap.Logger) *ReportService {
	return &ReportService{dayBook: dayBook, log: log}
}

var reportHeaders = []string{"Date", "Bill No", "Customer", "Type", "Amount", "Description"}

func reportRow(date time.Time, billID, customer, txType string, amount float64, description string) []string {
	return []string{
		date.Format("2006-01-02 15:04"),
		billID,
		customer,
		txType,
		strconv.FormatFloat(amount, 'f', 2, 64),
		description,
	}
}

// CSV renders the transactions of [start, end] as a CSV document. The
// leading BOM keeps Excel from mangling non-ASCII customer names.
func (s *ReportService) CSV(start, end time.Time) ([]byte, error) {
	book := s.dayBook.Range(start, end)

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeaders); err != nil {
		return nil, err
	}
	for _, t := range book.Transactions {
		row := reportRow(t.Date, t.BillID, t.CustomerName, string(t.Type), t.Amount, t.Description)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX renders the transactions of [start, end] as an Excel workbook with a
// totals row at the bottom.
func (s *ReportService) XLSX(start, end time.Time) ([]byte, error) {
	book := s.dayBook.Range(start, end)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Day Book"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, h := range reportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, t := range book.Transactions {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t.Date.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), t.BillID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), t.CustomerName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(t.Type))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), t.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), t.Description)
		row++
	}

	row++
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), "Total In")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), book.TotalIn)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), "Total Out")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), book.TotalOut)

	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "C", 24)
	f.SetColWidth(sheet, "D", "D", 16)
	f.SetColWidth(sheet, "E", "E", 12)
	f.SetColWidth(sheet, "F", "F", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.log.Error("day book export failed", zap.Error(err))
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename builds the attachment name for a day book export.
func (s *ReportService) Filename(ext string, start, end time.Time) string {
	if start.Format("20060102") == end.Format("20060102") {
		return fmt.Sprintf("daybook_%s.%s", start.Format("20060102"), ext)
	}
	return fmt.Sprintf("daybook_%s_%s.%s", start.Format("20060102"), end.Format("20060102"), ext)
}
