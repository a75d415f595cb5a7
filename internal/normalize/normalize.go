// Package normalize turns raw spreadsheet cell values into canonical field values.
//
// Cells arrive as one of: nil (blank), string, float64 (numeric cells, including
// Excel serial dates), int, or time.Time. Every function here is pure.
package normalize

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
)

// DateLayout is the canonical DD/MM/YYYY rendering of every stored date.
const DateLayout = "02/01/2006"

var (
	errNotADate   = errors.New("not a valid date")
	errNotANumber = errors.New("not a number")
)

var textDateLayouts = []string{
	DateLayout,
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
}

// Name splits raw on delimiter and rejoins the tokens with single spaces, each
// word with only its first letter upper-cased ("ANA-MARIA" becomes "Ana-maria").
// Blank or absent values yield "".
func Name(raw any, delimiter string) string {
	s := norm.NFC.String(Text(raw))
	if delimiter == "" {
		delimiter = " "
	}

	lower := cases.Lower(language.Spanish)
	upper := cases.Upper(language.Spanish)
	var words []string
	for _, token := range strings.Split(s, delimiter) {
		for _, word := range strings.Fields(token) {
			word = lower.String(word)
			first, size := utf8.DecodeRuneInString(word)
			words = append(words, upper.String(string(first))+word[size:])
		}
	}
	return strings.Join(words, " ")
}

// OptionalText lower-cases and trims textual cells; anything else becomes "".
func OptionalText(raw any) string {
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// LowerText lower-cases any cell rendered as text.
func LowerText(raw any) string {
	return strings.ToLower(strings.TrimSpace(Text(raw)))
}

// Text renders a cell as plain text without changing its case.
func Text(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.Format("15:04:05")
	default:
		return ""
	}
}

// Date formats a date cell as DD/MM/YYYY.
func Date(field string, raw any) (string, error) {
	t, err := parseDate(raw)
	if err != nil {
		return "", &domain.FormatError{Field: field, Value: raw, Reason: err.Error()}
	}
	return t.Format(DateLayout), nil
}

func parseDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, errNotADate
		}
		return v, nil
	case float64:
		if math.IsNaN(v) || v <= 0 {
			return time.Time{}, errNotADate
		}
		return excelize.ExcelDateToTime(v, false)
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range textDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, errNotADate
}

// CreditCode coerces a cell to an integer and renders it back as a string.
func CreditCode(field string, raw any) (string, error) {
	n, err := integer(raw)
	if err != nil {
		return "", &domain.FormatError{Field: field, Value: raw, Reason: err.Error()}
	}
	return strconv.FormatInt(n, 10), nil
}

// Integer coerces a cell to an int, truncating any fractional part.
func Integer(field string, raw any) (int, error) {
	n, err := integer(raw)
	if err != nil {
		return 0, &domain.FormatError{Field: field, Value: raw, Reason: err.Error()}
	}
	return int(n), nil
}

func integer(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errNotANumber
		}
		return int64(math.Trunc(v)), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errNotANumber
		}
		return int64(math.Trunc(f)), nil
	}
	return 0, errNotANumber
}

// Percentage parses "<number>%" into the numeric percentage, e.g. "8%" -> 8.
func Percentage(raw any) (decimal.Decimal, error) {
	s, ok := raw.(string)
	if !ok {
		return decimal.Zero, &domain.FormatError{Value: raw, Reason: "percentage must be text ending in %"}
	}
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return decimal.Zero, &domain.FormatError{Value: raw, Reason: "missing trailing %"}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(s, "%")))
	if err != nil {
		return decimal.Zero, &domain.FormatError{Value: raw, Reason: "non-numeric percentage"}
	}
	return d, nil
}

// Amount coerces a currency cell. Blank cells are zero; a leading "Q" and
// thousands separators are accepted in text cells.
func Amount(field string, raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, &domain.FormatError{Field: field, Value: raw, Reason: errNotANumber.Error()}
		}
		return decimal.NewFromFloat(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, nil
		}
		s = strings.TrimSpace(strings.TrimPrefix(s, "Q"))
		s = strings.ReplaceAll(s, ",", "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, &domain.FormatError{Field: field, Value: raw, Reason: errNotANumber.Error()}
		}
		return d, nil
	}
	return decimal.Zero, &domain.FormatError{Field: field, Value: raw, Reason: errNotANumber.Error()}
}
