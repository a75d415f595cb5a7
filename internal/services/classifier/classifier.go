// Package classifier partitions general-guide rows into importable and excluded sets.
package classifier

import (
	"strings"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/normalize"
)

const (
	FieldTrackingID = "NumeroGuia"
	FieldReason     = "Motivo"
)

// Reasons that exclude a guide from the general import.
var excludedReasons = map[string]bool{
	"DEVOLUCION":    true,
	"FISCALIZACION": true,
}

// internalGuidePrefix marks internal/return guides at tracking id positions [1:3].
const internalGuidePrefix = "DG"

type Options struct {
	// DropFooter discards the last row of the sheet. Exported guide sheets
	// always end with a totals line that carries no guide data.
	DropFooter bool
}

// Result holds the two order-preserving partitions.
type Result struct {
	Valid   []domain.Row
	Invalid []domain.Row
}

// DropFooter returns rows without its last element.
func DropFooter(rows []domain.Row) []domain.Row {
	if len(rows) == 0 {
		return rows
	}
	return rows[:len(rows)-1]
}

// Classify splits rows into valid and invalid guides. Rows lacking either
// classification column yield a *domain.SchemaError.
func Classify(rows []domain.Row, opts Options) (Result, error) {
	if opts.DropFooter {
		rows = DropFooter(rows)
	}

	res := Result{
		Valid:   make([]domain.Row, 0, len(rows)),
		Invalid: make([]domain.Row, 0),
	}
	for _, row := range rows {
		invalid, err := IsInvalid(row)
		if err != nil {
			return Result{}, err
		}
		if invalid {
			res.Invalid = append(res.Invalid, row)
		} else {
			res.Valid = append(res.Valid, row)
		}
	}
	return res, nil
}

// IsInvalid applies the exclusion predicates to a single row.
func IsInvalid(row domain.Row) (bool, error) {
	rawID, ok := row.Get(FieldTrackingID)
	if !ok {
		return false, &domain.SchemaError{Field: FieldTrackingID}
	}
	rawReason, ok := row.Get(FieldReason)
	if !ok {
		return false, &domain.SchemaError{Field: FieldReason}
	}

	if segment(normalize.Text(rawID), 1, 3) == internalGuidePrefix {
		return true, nil
	}
	reason := strings.ToUpper(strings.TrimSpace(normalize.Text(rawReason)))
	return excludedReasons[reason], nil
}

// GuideType returns the type segment of a tracking id, e.g. "DG" for "XDG1234".
func GuideType(trackingID string) string {
	return segment(trackingID, 1, 3)
}

// segment slices like s[from:to] but clamps to the string length.
func segment(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
