// Package xlsx renders a report as an Excel workbook with the layout
// users already know from the exported artifact: the transaction table,
// a blank spacer row and the Ringkasan totals block.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"catatuang/internal/report"
)

const sheet = "Laporan"

var headers = []string{"Tanggal", "Nama", "Kategori", "Tipe", "Nominal", "Catatan"}

// Writer renders reports via excelize. The zero value is ready to use.
type Writer struct{}

func New() *Writer { return &Writer{} }

// Write renders the report and streams the workbook to w.
func (*Writer) Write(w io.Writer, r report.Report) error {
	f, err := render(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func render(r report.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range r.Rows {
		n := i + 2
		values := []any{
			row.Date,
			row.Name,
			row.Category,
			row.Kind,
			row.Amount.InexactFloat64(),
			row.Note,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, n)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row %d: %w", n, err)
			}
		}
	}

	// blank spacer row, then the totals block
	start := len(r.Rows) + 3
	summary := [][2]any{
		{"Ringkasan", nil},
		{"Total Pemasukan", r.Summary.Income.InexactFloat64()},
		{"Total Pengeluaran", r.Summary.Expense.InexactFloat64()},
		{"Saldo", r.Summary.Balance.InexactFloat64()},
	}
	for i, line := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, start+i)
		if err := f.SetCellValue(sheet, cell, line[0]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
		if line[1] != nil {
			cell, _ = excelize.CoordinatesToCellName(2, start+i)
			if err := f.SetCellValue(sheet, cell, line[1]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write summary: %w", err)
			}
		}
	}
	titleCell, _ := excelize.CoordinatesToCellName(1, start)
	if err := f.SetCellStyle(sheet, titleCell, titleCell, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style summary: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", "F", 18); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column widths: %w", err)
	}
	return f, nil
}
