package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(kind Kind, category string, amount int64) Transaction {
	return Transaction{
		Amount:   decimal.NewFromInt(amount),
		Date:     NewDate(2025, 6, 1),
		Category: category,
		Name:     category,
		Kind:     kind,
	}
}

func TestTotalsEmpty(t *testing.T) {
	sum := Totals(nil)
	if !sum.Income.IsZero() || !sum.Expense.IsZero() || !sum.Balance.IsZero() {
		t.Fatalf("empty input must yield all zeros, got %+v", sum)
	}
}

func TestTotals(t *testing.T) {
	txs := []Transaction{
		tx(KindIncome, "Gaji", 50000),
		tx(KindExpense, "Makanan", 12000),
		tx(KindIncome, "Bonus", 5000),
		tx(KindExpense, "Transportasi", 3000),
	}
	sum := Totals(txs)
	if !sum.Income.Equal(decimal.NewFromInt(55000)) {
		t.Fatalf("income = %s, want 55000", sum.Income)
	}
	if !sum.Expense.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expense = %s, want 15000", sum.Expense)
	}
	if !sum.Balance.Equal(sum.Income.Sub(sum.Expense)) {
		t.Fatalf("balance must equal income - expense, got %s", sum.Balance)
	}
}

func TestByCategory(t *testing.T) {
	txs := []Transaction{
		tx(KindExpense, "Makanan", 10000),
		tx(KindExpense, "Makanan", 2500),
		tx(KindIncome, "Gaji", 50000),
	}
	got := ByCategory(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if !got["Makanan"].Amount.Equal(decimal.NewFromInt(12500)) || got["Makanan"].Kind != KindExpense {
		t.Fatalf("unexpected Makanan entry: %+v", got["Makanan"])
	}
	if !got["Gaji"].Amount.Equal(decimal.NewFromInt(50000)) || got["Gaji"].Kind != KindIncome {
		t.Fatalf("unexpected Gaji entry: %+v", got["Gaji"])
	}
}

// A category used by both kinds sums both amounts together and keeps the
// kind of the last-encountered transaction. Pinned deliberately.
func TestByCategoryMixedKinds(t *testing.T) {
	txs := []Transaction{
		tx(KindExpense, "Food", 10),
		tx(KindIncome, "Food", 5),
	}
	got := ByCategory(txs)
	if len(got) != 1 {
		t.Fatalf("expected a single Food entry, got %d entries", len(got))
	}
	food := got["Food"]
	if !food.Amount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("Food amount = %s, want 15", food.Amount)
	}
	if food.Kind != KindIncome {
		t.Fatalf("Food kind = %s, want last-encountered kind %s", food.Kind, KindIncome)
	}
}

func TestAggregatesDoNotMutateInput(t *testing.T) {
	txs := []Transaction{
		tx(KindIncome, "Gaji", 100),
		tx(KindExpense, "Makanan", 50),
	}
	before := make([]Transaction, len(txs))
	copy(before, txs)

	Totals(txs)
	ByCategory(txs)

	for i := range txs {
		if txs[i].Category != before[i].Category || !txs[i].Amount.Equal(before[i].Amount) {
			t.Fatal("aggregate functions must not mutate their input")
		}
	}
}
