// Package report aggregates per-row outcomes into a batch summary.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
)

// Amount renders a currency value with two decimal places.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatTotals renders the four running totals.
func FormatTotals(t domain.BatchTotals) domain.FormattedTotals {
	return domain.FormattedTotals{
		CODAmount:       Amount(t.CODAmount),
		Cash:            Amount(t.Cash),
		CommissionValue: Amount(t.CommissionValue),
		SettledAmount:   Amount(t.SettledAmount),
	}
}

// Tally counts dispositions and commission mismatches.
func Tally(outcomes []domain.RowOutcome) domain.Counts {
	c := domain.Counts{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Disposition {
		case domain.DispositionSaved:
			c.Saved++
		case domain.DispositionDuplicate:
			c.Duplicate++
		case domain.DispositionInvalid:
			c.Invalid++
		case domain.DispositionUnmatched:
			c.Unmatched++
		}
		if o.Commission != nil && o.Commission.Verdict == domain.CommissionMismatch {
			c.CommissionMismatch++
		}
	}
	return c
}

// Summarize builds the report for one batch. It has no side effects.
func Summarize(kind, filename string, outcomes []domain.RowOutcome, totals domain.BatchTotals) domain.BatchReport {
	if outcomes == nil {
		outcomes = make([]domain.RowOutcome, 0)
	}
	return domain.BatchReport{
		Kind:     kind,
		Filename: filename,
		Counts:   Tally(outcomes),
		Totals:   FormatTotals(totals),
		Outcomes: outcomes,
	}
}
