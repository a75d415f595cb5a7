package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ssmgcode/cargo-expreso-control/internal/config"
	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/repository"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/builder"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/reconciliation"
	"github.com/ssmgcode/cargo-expreso-control/internal/sheet"
)

type harness struct {
	app *App
	out *bytes.Buffer
	err *bytes.Buffer
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "cli.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	h := &harness{out: &bytes.Buffer{}, err: &bytes.Buffer{}, dir: dir}
	h.app = &App{
		Service: reconciliation.NewReconciliationService(
			repository.NewGuideRepository(db),
			repository.NewSettlementRepository(db),
			repository.NewBatchRepository(db),
			reconciliation.Options{DropFooter: true},
		),
		SettlementHeaderRow: sheet.DefaultSettlementHeaderRow,
		Out:                 h.out,
		Err:                 h.err,
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.err.Reset()
	return h.app.Run(context.Background(), args)
}

func saveWorkbook(t *testing.T, path string, cells map[string]any, headerAxis string, header []string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for axis, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", axis, v))
	}
	col, row, err := excelize.CellNameToCoordinates(headerAxis)
	require.NoError(t, err)

	hdr := make([]any, len(header))
	for i, c := range header {
		hdr[i] = c
	}
	require.NoError(t, f.SetSheetRow("Sheet1", headerAxis, &hdr))
	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(col, row+i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func guideRow(id string) []any {
	return []any{id, "07/03/2024", "EL-SOL", "ANA LOPEZ", nil, nil, "40123",
		"ENTREGADO", nil, "XELA", "ana lopez", "08/03/2024", "10:00"}
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ExitUsage, h.run())
	assert.Equal(t, ExitUsage, h.run("frobnicate"))
	assert.Contains(t, h.err.String(), "unknown command")
	assert.Equal(t, ExitUsage, h.run("import-guides"))
	assert.Equal(t, ExitOK, h.run("help"))
	assert.Contains(t, h.out.String(), "guidectl paid")
}

func TestRun_MissingFile(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ExitFatal, h.run("import-guides", filepath.Join(h.dir, "nope.xlsx")))
	assert.Contains(t, h.err.String(), "nope.xlsx")
}

func TestRun_ImportReconcileAndList(t *testing.T) {
	h := newHarness(t)

	guides := filepath.Join(h.dir, "guias.xlsx")
	saveWorkbook(t, guides, nil, "A1", builder.GuideColumns, [][]any{
		guideRow("G1"),
		guideRow("G2"),
		{"TOTAL"},
	})
	require.Equal(t, ExitOK, h.run("import-guides", guides), h.err.String())
	assert.Contains(t, h.out.String(), "G1")
	assert.Regexp(t, `Saved\s+2`, h.out.String())

	settlements := filepath.Join(h.dir, "liquidacion.xlsx")
	saveWorkbook(t, settlements,
		map[string]any{sheet.CellSettlementDate: "09/03/2024", sheet.CellCreditCode: "40123", sheet.CellClient: "EL SOL"},
		"A9", builder.SettlementColumns, [][]any{
			{"G1", 1, "LIQUIDADA", 100, 100, "8%", 8, 92, "OP", "AUT", "300"},
			{"G2", 1, "LIQUIDADA", 0.1, 0.1, "10%", 0.01, 0.09, "OP", "AUT", "300"},
			{"G7", 1, "LIQUIDADA", 50, 50, "8%", 4, 46, "OP", "AUT", "300"},
			{"TOTAL"},
		})
	require.Equal(t, ExitOK, h.run("reconcile", settlements), h.err.String())
	out := h.out.String()
	assert.Contains(t, out, string(domain.DispositionUnmatched))
	assert.Regexp(t, `Commission mismatch\s+0`, out)
	assert.Regexp(t, `COD amount\s+100\.10`, out)
	assert.Regexp(t, `Commission value\s+8\.01`, out)

	require.Equal(t, ExitOK, h.run("paid"))
	assert.Contains(t, h.out.String(), "G1")
	assert.Contains(t, h.out.String(), "G2")
	assert.NotContains(t, h.out.String(), "G7")

	require.Equal(t, ExitOK, h.run("paid", "-id", "G2"))
	assert.Contains(t, h.out.String(), "10%")
	assert.NotContains(t, h.out.String(), "G1")

	assert.Equal(t, ExitFatal, h.run("paid", "-id", "G7"))
}

func TestRun_SchemaMismatchExitsFatal(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "otro.xlsx")
	saveWorkbook(t, path, nil, "A1", []string{"NumeroGuia", "Fecha"}, [][]any{{"G1", "07/03/2024"}, {"TOTAL"}})

	assert.Equal(t, ExitFatal, h.run("import-guides", path))
	assert.Contains(t, h.err.String(), "expected layout")
	assert.Contains(t, h.out.String(), "Rows", "the partial report is still printed")
}
