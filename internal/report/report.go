// Package report turns a slice of transactions into an exportable
// financial report: a period filter, the row layout and the summary
// block. Rendering to a concrete file format lives in subpackages
// behind the Writer port.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"catatuang/internal/core"
)

// Period selects the reporting window relative to a reference instant.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod parses a user-supplied period name.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	case PeriodYearly:
		return PeriodYearly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Label returns the Indonesian display name of the period.
func (p Period) Label() string {
	switch p {
	case PeriodWeekly:
		return "Mingguan"
	case PeriodMonthly:
		return "Bulanan"
	case PeriodYearly:
		return "Tahunan"
	default:
		return string(p)
	}
}

// FilterByPeriod selects the transactions whose date falls inside the
// period window anchored at ref. Weekly is the closed interval from
// seven days before ref up to ref; monthly and yearly compare calendar
// month and year. The input is never mutated.
func FilterByPeriod(txs []core.Transaction, p Period, ref time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if inPeriod(tx.Date, p, ref) {
			out = append(out, tx)
		}
	}
	return out
}

func inPeriod(d core.Date, p Period, ref time.Time) bool {
	switch p {
	case PeriodWeekly:
		end := core.DateOf(ref).Time
		start := end.AddDate(0, 0, -7)
		return !d.Before(start) && !d.After(end)
	case PeriodMonthly:
		return d.Year() == ref.Year() && d.Month() == ref.Month()
	case PeriodYearly:
		return d.Year() == ref.Year()
	default:
		return false
	}
}

// Row is one report line in display form. Amount stays numeric so the
// spreadsheet gets a number cell, not text.
type Row struct {
	Date     string
	Name     string
	Category string
	Kind     string
	Amount   decimal.Decimal
	Note     string
}

// Report is the rendered content handed to a Writer.
type Report struct {
	Period  Period
	Rows    []Row
	Summary core.Summary
}

// Writer renders a report into a binary artifact.
type Writer interface {
	Write(w io.Writer, r Report) error
}

// Build lays out the filtered transactions as report rows, in input
// order, and computes the summary over the same set.
func Build(txs []core.Transaction, p Period) Report {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{
			Date:     tx.Date.String(),
			Name:     tx.Name,
			Category: tx.Category,
			Kind:     tx.Kind.Label(),
			Amount:   tx.Amount,
			Note:     tx.Note,
		})
	}
	return Report{
		Period:  p,
		Rows:    rows,
		Summary: core.Totals(txs),
	}
}

// Filename names the export artifact after the period and the day it
// was generated.
func Filename(p Period, now time.Time) string {
	return fmt.Sprintf("laporan_keuangan_%s_%s.xlsx", p, now.Format("2006-01-02"))
}
