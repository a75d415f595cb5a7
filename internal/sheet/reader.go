package sheet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/normalize"
)

// Metadata cells of a settlement sheet.
const (
	CellSettlementDate = "D4"
	CellCreditCode     = "D5"
	CellClient         = "D6"
)

// DefaultSettlementHeaderRow is the sheet row holding the settlement column names.
const DefaultSettlementHeaderRow = 9

var hundred = decimal.NewFromInt(100)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrNoHeader      = errors.New("header row is empty")
)

// SettlementSheet is a settlement workbook reduced to named fields.
type SettlementSheet struct {
	Meta domain.SettlementMeta
	Rows []domain.Row
}

// ReadGuides reads a general guide sheet whose first row is the header.
// An empty sheetName selects the first sheet.
func ReadGuides(r io.Reader, sheetName string) ([]domain.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	return readTable(f, name, 1)
}

// ReadSettlements reads a settlement sheet. headerRow is 1-based; rows below it
// are data, including the trailing footer which the caller decides to drop.
func ReadSettlements(r io.Reader, sheetName string, headerRow int) (*SettlementSheet, error) {
	if headerRow < 1 {
		headerRow = DefaultSettlementHeaderRow
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	meta, err := readMeta(f, name)
	if err != nil {
		return nil, err
	}

	rows, err := readTable(f, name, headerRow)
	if err != nil {
		return nil, err
	}
	return &SettlementSheet{Meta: meta, Rows: rows}, nil
}

func resolveSheet(f *excelize.File, sheetName string) (string, error) {
	if sheetName == "" {
		return f.GetSheetName(0), nil
	}
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}
	return sheetName, nil
}

func readMeta(f *excelize.File, sheet string) (domain.SettlementMeta, error) {
	raw := excelize.Options{RawCellValue: true}

	date, err := f.GetCellValue(sheet, CellSettlementDate, raw)
	if err != nil {
		return domain.SettlementMeta{}, fmt.Errorf("read %s: %w", CellSettlementDate, err)
	}
	credit, err := f.GetCellValue(sheet, CellCreditCode, raw)
	if err != nil {
		return domain.SettlementMeta{}, fmt.Errorf("read %s: %w", CellCreditCode, err)
	}
	client, err := f.GetCellValue(sheet, CellClient)
	if err != nil {
		return domain.SettlementMeta{}, fmt.Errorf("read %s: %w", CellClient, err)
	}

	meta := domain.SettlementMeta{
		Date:       strings.TrimSpace(date),
		CreditCode: strings.TrimSpace(credit),
		Client:     strings.TrimSpace(client),
	}
	// Metadata is informational; keep the cell text when it does not parse.
	if d, err := normalize.Date(CellSettlementDate, cellValue(date, date, false)); err == nil {
		meta.Date = d
	}
	if c, err := normalize.CreditCode(CellCreditCode, meta.CreditCode); err == nil {
		meta.CreditCode = c
	}
	return meta, nil
}

// readTable maps every row below headerRow onto the header's non-blank column names.
func readTable(f *excelize.File, sheet string, headerRow int) ([]domain.Row, error) {
	rawRows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	shownRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rawRows) < headerRow {
		return nil, fmt.Errorf("%w: row %d", ErrNoHeader, headerRow)
	}

	header := make(map[int]string)
	for i, name := range rawRows[headerRow-1] {
		if name = strings.TrimSpace(name); name != "" {
			header[i] = name
		}
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: row %d", ErrNoHeader, headerRow)
	}

	var rows []domain.Row
	for i := headerRow; i < len(rawRows); i++ {
		fields := make(map[string]any, len(header))
		blank := true
		for col, name := range header {
			raw := cell(rawRows, i, col)
			shown := cell(shownRows, i, col)
			v := cellValue(raw, shown, isText(f, sheet, col, i))
			if v != nil {
				blank = false
			}
			fields[name] = v
		}
		if blank {
			continue
		}
		rows = append(rows, domain.Row{Index: i + 1, Fields: fields})
	}
	return rows, nil
}

func cell(rows [][]string, i, col int) string {
	if i >= len(rows) || col >= len(rows[i]) {
		return ""
	}
	return rows[i][col]
}

func isText(f *excelize.File, sheet string, col, row int) bool {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return false
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return true
	}
	return false
}

// cellValue turns a cell into what the normalizer expects: nil for blank, a
// percentage string for percent-formatted numbers, a clock time for time-of-day
// cells and float64 for other numbers. Formula results follow their cached value.
func cellValue(raw, shown string, text bool) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if text {
		return raw
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	if strings.HasSuffix(strings.TrimSpace(shown), "%") {
		// The display may be rounded ("8%" for 0.075); the stored fraction is not.
		return decimal.NewFromFloat(n).Mul(hundred).String() + "%"
	}
	if n >= 0 && n < 1 && isTimeOfDay(shown) {
		return timeOfDay(n)
	}
	return n
}

// timeOfDay converts a day fraction to a clock time on the Excel epoch.
func timeOfDay(fraction float64) time.Time {
	seconds := math.Round(fraction * 24 * 60 * 60)
	return excelEpoch.Add(time.Duration(seconds) * time.Second)
}

func isTimeOfDay(shown string) bool {
	return strings.Contains(shown, ":") && !strings.ContainsAny(shown, "/-")
}
