package core

import "github.com/shopspring/decimal"

// Summary holds the aggregate totals for a sequence of transactions.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// CategorySum is an amount aggregated under one category label.
type CategorySum struct {
	Amount decimal.Decimal
	Kind   Kind
}

// Totals computes income, expense and balance over the given transactions.
// It is pure: the input is never mutated and an empty input yields all zeros.
func Totals(txs []Transaction) Summary {
	income := decimal.Zero
	expense := decimal.Zero
	for _, tx := range txs {
		if tx.Kind == KindIncome {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}
	return Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// ByCategory groups transactions by their exact (case-sensitive) category
// label. When a category is used by both kinds in the same input, the
// amounts are summed together undifferentiated and the recorded kind is
// that of the last-encountered transaction. That mirrors the product's
// observed behavior and is kept on purpose; changing it is a product
// decision, not a bug fix.
func ByCategory(txs []Transaction) map[string]CategorySum {
	out := make(map[string]CategorySum, len(txs))
	for _, tx := range txs {
		sum := out[tx.Category]
		sum.Amount = sum.Amount.Add(tx.Amount)
		sum.Kind = tx.Kind
		out[tx.Category] = sum
	}
	return out
}
