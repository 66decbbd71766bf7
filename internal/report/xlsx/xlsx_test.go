package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"catatuang/internal/core"
	"catatuang/internal/report"
)

func TestWriteLayout(t *testing.T) {
	d, _ := core.ParseDate("2024-03-01")
	txs := []core.Transaction{
		{ID: "t1", Amount: decimal.NewFromInt(50000), Date: d, Category: "Gaji", Name: "Gaji bulanan", Kind: core.KindIncome},
		{ID: "t2", Amount: decimal.NewFromInt(12500), Date: d, Category: "Makanan", Name: "kopi", Note: "pagi", Kind: core.KindExpense},
	}
	r := report.Build(txs, report.PeriodMonthly)

	var buf bytes.Buffer
	if err := New().Write(&buf, r); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	cell := func(ref string) string {
		t.Helper()
		v, err := f.GetCellValue("Laporan", ref)
		if err != nil {
			t.Fatalf("read %s: %v", ref, err)
		}
		return v
	}

	if got := cell("A1"); got != "Tanggal" {
		t.Fatalf("A1 = %q, want Tanggal", got)
	}
	if got := cell("D1"); got != "Tipe" {
		t.Fatalf("D1 = %q, want Tipe", got)
	}
	if got := cell("D2"); got != "Pemasukan" {
		t.Fatalf("D2 = %q, want Pemasukan", got)
	}
	if got := cell("E3"); got != "12500" {
		t.Fatalf("E3 = %q, want 12500", got)
	}
	if got := cell("F3"); got != "pagi" {
		t.Fatalf("F3 = %q, want pagi", got)
	}

	// row 4 is the spacer, Ringkasan starts at row 5
	if got := cell("A4"); got != "" {
		t.Fatalf("A4 must be blank, got %q", got)
	}
	if got := cell("A5"); got != "Ringkasan" {
		t.Fatalf("A5 = %q, want Ringkasan", got)
	}
	if got := cell("B6"); got != "50000" {
		t.Fatalf("Total Pemasukan = %q, want 50000", got)
	}
	if got := cell("B7"); got != "12500" {
		t.Fatalf("Total Pengeluaran = %q, want 12500", got)
	}
	if got := cell("A8"); got != "Saldo" {
		t.Fatalf("A8 = %q, want Saldo", got)
	}
	if got := cell("B8"); got != "37500" {
		t.Fatalf("Saldo = %q, want 37500", got)
	}
}

func TestWriteEmptyReport(t *testing.T) {
	r := report.Build(nil, report.PeriodWeekly)

	var buf bytes.Buffer
	if err := New().Write(&buf, r); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Laporan", "A3"); v != "Ringkasan" {
		t.Fatalf("empty report must still carry the summary block, got %q", v)
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := report.Filename(report.PeriodWeekly, now); got != "laporan_keuangan_weekly_2024-03-15.xlsx" {
		t.Fatalf("unexpected filename %q", got)
	}
}
