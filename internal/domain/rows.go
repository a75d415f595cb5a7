package domain

import "github.com/shopspring/decimal"

// Row is one data row of an input sheet, addressed by column name only.
// Index is the 1-based sheet row number, kept for reporting.
type Row struct {
	Index  int
	Fields map[string]any
}

// Get returns the raw value stored under field and whether the column exists at all.
func (r Row) Get(field string) (any, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Disposition is the terminal state of a single row within a batch.
type Disposition string

const (
	DispositionSaved     Disposition = "saved"
	DispositionDuplicate Disposition = "duplicate"
	DispositionInvalid   Disposition = "invalid"
	DispositionUnmatched Disposition = "unmatched"
)

// CommissionVerdict is the outcome of recomputing a settlement's commission.
type CommissionVerdict string

const (
	CommissionCorrect  CommissionVerdict = "correct"
	CommissionMismatch CommissionVerdict = "mismatch"
)

// CommissionCheck holds the evidence behind a verdict.
type CommissionCheck struct {
	Verdict    CommissionVerdict `json:"verdict"`
	Percentage decimal.Decimal   `json:"percentage"`
	Expected   decimal.Decimal   `json:"expected"`
	Recorded   decimal.Decimal   `json:"recorded"`
}

// RowOutcome is what happened to one row. Commission is set only for matched settlements.
type RowOutcome struct {
	Row         int              `json:"row"`
	GuideID     string           `json:"guide_id"`
	Disposition Disposition      `json:"disposition"`
	Reason      string           `json:"reason,omitempty"`
	Commission  *CommissionCheck `json:"commission,omitempty"`
}

// BatchTotals are the running currency sums of one settlement batch.
type BatchTotals struct {
	CODAmount       decimal.Decimal `json:"cod_amount"`
	Cash            decimal.Decimal `json:"cash"`
	CommissionValue decimal.Decimal `json:"commission_value"`
	SettledAmount   decimal.Decimal `json:"settled_amount"`
}

// Add accumulates one matched settlement's amounts.
func (t *BatchTotals) Add(cod, cash, commissionValue, settled decimal.Decimal) {
	t.CODAmount = t.CODAmount.Add(cod)
	t.Cash = t.Cash.Add(cash)
	t.CommissionValue = t.CommissionValue.Add(commissionValue)
	t.SettledAmount = t.SettledAmount.Add(settled)
}

// SettlementMeta carries the header cells of a settlement sheet.
type SettlementMeta struct {
	Date       string `json:"date"`
	CreditCode string `json:"credit_code"`
	Client     string `json:"client"`
}
