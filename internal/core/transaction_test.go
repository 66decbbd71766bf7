package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}

	for _, bad := range []string{"", "15-03-2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"50000", "50000", nil},
		{"12.34", "12.34", nil},
		{"0", "0", nil},
		{"", "", ErrInvalidAmount},
		{"abc", "", ErrInvalidAmount},
		{"-5", "", ErrNegativeAmount},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ParseAmount(%q): expected %v, got %v", tc.in, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAmount(%q): unexpected error %v", tc.in, err)
		}
		if want, _ := decimal.NewFromString(tc.want); !got.Equal(want) {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, got, want)
		}
	}
}

func TestKind(t *testing.T) {
	if !KindIncome.IsValid() || !KindExpense.IsValid() {
		t.Fatal("closed kind values must be valid")
	}
	if Kind("transfer").IsValid() {
		t.Fatal("unknown kind must be invalid")
	}
	if KindIncome.Label() != "Pemasukan" || KindExpense.Label() != "Pengeluaran" {
		t.Fatal("unexpected kind labels")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:   decimal.NewFromInt(100),
		Date:     NewDate(2025, 1, 1),
		Category: "Gaji",
		Name:     "Gaji bulanan",
		Kind:     KindIncome,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{func(tx *Transaction) { tx.Name = "  " }, ErrEmptyName},
		{func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrNegativeAmount},
	}
	for i, tc := range cases {
		tx := good
		tc.mutate(&tx)
		if err := tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}
