package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// KindIncome and KindExpense are the only two transaction kinds.
	// The wire values keep the Indonesian labels the stored documents use.
	KindIncome  Kind = "pemasukan"
	KindExpense Kind = "pengeluaran"
)

type (
	Kind string

	Date struct {
		time.Time
	}

	// Transaction is the sole domain entity: a single income or expense
	// record owned by exactly one identity.
	//
	// ID, OwnerID and CreatedAt are immutable once assigned. CreatedAt and
	// UpdatedAt are server-assigned and used only for ordering; a nil
	// CreatedAt marks a pending write the server has not timestamped yet.
	Transaction struct {
		ID        string
		OwnerID   string
		Amount    decimal.Decimal
		Date      Date
		Category  string
		Name      string
		Note      string
		Kind      Kind
		CreatedAt *time.Time
		UpdatedAt *time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidKind     = errors.New("invalid kind")
)

// IsValid reports whether k is one of the two closed kind values.
func (k Kind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

// Label returns the display label for the kind.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Pemasukan"
	case KindExpense:
		return "Pengeluaran"
	default:
		return string(k)
	}
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 calendar date (yyyy-mm-dd).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseAmount coerces user-supplied amount text to a numeric value.
// Amounts are monetary and must never be persisted as strings.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// Validate checks the fields a caller controls. Server-assigned fields
// (ID, CreatedAt, UpdatedAt) are not validated here.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
