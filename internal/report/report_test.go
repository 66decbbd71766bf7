package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"catatuang/internal/core"
)

func tx(id, date string, amount int64, kind core.Kind) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:       id,
		Amount:   decimal.NewFromInt(amount),
		Date:     d,
		Category: "Makanan",
		Name:     id,
		Kind:     kind,
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"weekly", PeriodWeekly, false},
		{"Monthly", PeriodMonthly, false},
		{" yearly ", PeriodYearly, false},
		{"daily", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePeriod(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestFilterByPeriodMonthly(t *testing.T) {
	ref := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("in-month-early", "2024-03-01", 100, core.KindExpense),
		tx("in-month-late", "2024-03-31", 100, core.KindExpense),
		tx("prev-month", "2024-02-28", 100, core.KindExpense),
		tx("next-month", "2024-04-01", 100, core.KindExpense),
		tx("same-month-prev-year", "2023-03-15", 100, core.KindExpense),
	}

	got := FilterByPeriod(txs, PeriodMonthly, ref)
	want := []string{"in-month-early", "in-month-late"}
	if len(got) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestFilterByPeriodWeeklyBoundsInclusive(t *testing.T) {
	ref := time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("on-ref", "2024-03-15", 100, core.KindExpense),
		tx("on-lower-bound", "2024-03-08", 100, core.KindExpense),
		tx("one-past-lower", "2024-03-07", 100, core.KindExpense),
		tx("tomorrow", "2024-03-16", 100, core.KindExpense),
	}

	got := FilterByPeriod(txs, PeriodWeekly, ref)
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if got[0].ID != "on-ref" || got[1].ID != "on-lower-bound" {
		t.Fatalf("weekly window must be [ref-7d, ref] inclusive, got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestFilterByPeriodYearly(t *testing.T) {
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("jan", "2024-01-01", 100, core.KindExpense),
		tx("dec", "2024-12-31", 100, core.KindExpense),
		tx("prev-year", "2023-12-31", 100, core.KindExpense),
	}
	got := FilterByPeriod(txs, PeriodYearly, ref)
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
}

func TestBuild(t *testing.T) {
	in := tx("gaji", "2024-03-01", 50000, core.KindIncome)
	in.Category = "Gaji"
	in.Note = "bulan maret"
	out := tx("kopi", "2024-03-02", 12500, core.KindExpense)

	r := Build([]core.Transaction{in, out}, PeriodMonthly)

	if len(r.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(r.Rows))
	}
	first := r.Rows[0]
	if first.Date != "2024-03-01" || first.Kind != "Pemasukan" || !first.Amount.Equal(decimal.NewFromInt(50000)) || first.Note != "bulan maret" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if r.Rows[1].Kind != "Pengeluaran" {
		t.Fatalf("expense row must carry the expense label, got %q", r.Rows[1].Kind)
	}
	if !r.Summary.Income.Equal(decimal.NewFromInt(50000)) ||
		!r.Summary.Expense.Equal(decimal.NewFromInt(12500)) ||
		!r.Summary.Balance.Equal(decimal.NewFromInt(37500)) {
		t.Fatalf("unexpected summary: %+v", r.Summary)
	}
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil, PeriodWeekly)
	if len(r.Rows) != 0 {
		t.Fatalf("empty input must yield no rows, got %d", len(r.Rows))
	}
	if !r.Summary.Balance.IsZero() {
		t.Fatalf("empty summary must be zero, got %s", r.Summary.Balance)
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 45, 0, 0, time.UTC)
	got := Filename(PeriodMonthly, now)
	want := "laporan_keuangan_monthly_2024-03-15.xlsx"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}
}
