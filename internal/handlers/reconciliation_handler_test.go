package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ssmgcode/cargo-expreso-control/internal/config"
	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
	"github.com/ssmgcode/cargo-expreso-control/internal/repository"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/builder"
	service "github.com/ssmgcode/cargo-expreso-control/internal/services/reconciliation"
	"github.com/ssmgcode/cargo-expreso-control/internal/sheet"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	svc := service.NewReconciliationService(
		repository.NewGuideRepository(db),
		repository.NewSettlementRepository(db),
		repository.NewBatchRepository(db),
		service.Options{DropFooter: true},
	)
	h := NewReconciliationHandler(svc, cache.New(time.Minute, time.Minute), SheetOptions{
		SettlementHeaderRow: sheet.DefaultSettlementHeaderRow,
	})

	r := gin.New()
	r.GET("/api/health", h.Health)
	r.GET("/api/guides/:id", h.GetGuide)
	r.POST("/api/guides/upload", h.UploadGuides)
	r.GET("/api/settlements", h.ListSettlements)
	r.POST("/api/settlements/upload", h.UploadSettlements)
	r.GET("/api/batches/:batchId", h.GetBatch)
	r.GET("/api/batches/:batchId/audits", h.ListAudits)
	return r
}

func guideWorkbook(t *testing.T, columns []string, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func guideRow(id, reason string) []any {
	// Same order as builder.GuideColumns.
	return []any{id, "07/03/2024", "EL-SOL", "ANA LOPEZ", "P1", nil, "40123",
		"ENTREGADO", reason, "XELA", "ana lopez", "08/03/2024", "10:00"}
}

func settlementWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", sheet.CellSettlementDate, "09/03/2024"))
	require.NoError(t, f.SetCellValue("Sheet1", sheet.CellCreditCode, 40123))
	require.NoError(t, f.SetCellValue("Sheet1", sheet.CellClient, "EL SOL"))

	header := make([]any, len(builder.SettlementColumns))
	for i, c := range builder.SettlementColumns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A9", &header))
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+10)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func settlementRow(id, pct string, cod, commission float64) []any {
	// Same order as builder.SettlementColumns.
	return []any{id, 1, "LIQUIDADA", cod, cod, pct, commission, cod - commission, "OP", "AUT", "300"}
}

func upload(t *testing.T, r *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) domain.BatchReport {
	t.Helper()
	var rep domain.BatchReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	return rep
}

func TestHealth(t *testing.T) {
	w := get(setupRouter(t), "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestUploadGuides(t *testing.T) {
	r := setupRouter(t)
	book := guideWorkbook(t, builder.GuideColumns,
		guideRow("XAB0001", ""),
		guideRow("XDG0002", ""),
		guideRow("XAB0003", "DEVOLUCION"),
		guideRow("XAB0001", ""),
		[]any{"TOTAL"},
	)

	w := upload(t, r, "/api/guides/upload", "guias.xlsx", book)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rep := decodeReport(t, w)
	assert.Equal(t, domain.Counts{Total: 4, Saved: 1, Duplicate: 1, Invalid: 2}, rep.Counts)
	assert.Equal(t, "guias.xlsx", rep.Filename)

	w = get(r, "/api/guides/XAB0001")
	require.Equal(t, http.StatusOK, w.Code)
	var guide models.Guide
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guide))
	assert.Equal(t, "El Sol", guide.Sender)
	assert.Equal(t, "Ana Lopez", guide.ReceivedBy)
	assert.False(t, guide.Paid)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/guides/XDG0002").Code)

	w = get(r, "/api/batches/"+rep.BatchID)
	require.Equal(t, http.StatusOK, w.Code)
	var batch models.ReconciliationBatch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Equal(t, models.BatchStatusCompleted, batch.Status)
	assert.Equal(t, 1, batch.SavedCount)
}

func TestUploadGuides_SchemaMismatch(t *testing.T) {
	r := setupRouter(t)
	book := guideWorkbook(t, []string{"NumeroGuia", "Fecha"}, []any{"XAB0001", "07/03/2024"}, []any{"TOTAL"})

	w := upload(t, r, "/api/guides/upload", "wrong.xlsx", book)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Motivo")
	assert.Contains(t, w.Body.String(), `"report"`)
}

func TestUploadGuides_BadInput(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/guides/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, r, "/api/guides/upload", "guias.csv", []byte("NumeroGuia\nXAB0001\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadSettlements(t *testing.T) {
	r := setupRouter(t)
	guides := guideWorkbook(t, builder.GuideColumns,
		guideRow("G1", ""),
		guideRow("G2", ""),
		[]any{"TOTAL"},
	)
	require.Equal(t, http.StatusOK, upload(t, r, "/api/guides/upload", "guias.xlsx", guides).Code)

	// Prime the listing cache so the upload has to invalidate it.
	w := get(r, "/api/settlements")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	book := settlementWorkbook(t,
		settlementRow("G1", "8%", 100, 8),
		settlementRow("G2", "10%", 200, 25),
		settlementRow("G9", "8%", 50, 4),
		[]any{"TOTAL", 3, nil, 350},
	)
	w = upload(t, r, "/api/settlements/upload", "liquidacion.xlsx", book)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rep := decodeReport(t, w)
	assert.Equal(t, domain.Counts{Total: 3, Saved: 2, Unmatched: 1, CommissionMismatch: 1}, rep.Counts)
	assert.Equal(t, domain.FormattedTotals{
		CODAmount:       "300.00",
		Cash:            "300.00",
		CommissionValue: "33.00",
		SettledAmount:   "267.00",
	}, rep.Totals)

	w = get(r, "/api/guides/G1")
	var guide models.Guide
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guide))
	assert.True(t, guide.Paid)

	w = get(r, "/api/settlements")
	var listed struct {
		Items []models.Settlement `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Items, 2)

	w = get(r, "/api/settlements?guide_id=G2")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Items, 1)
	assert.Equal(t, "10%", listed.Items[0].Commission)

	w = get(r, "/api/batches/"+rep.BatchID)
	var batch models.ReconciliationBatch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Equal(t, "EL SOL", batch.Client)
	assert.Equal(t, "09/03/2024", batch.SheetDate)

	w = get(r, "/api/batches/"+rep.BatchID+"/audits")
	require.Equal(t, http.StatusOK, w.Code)
	var audits struct {
		Items []models.SettlementAudit `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &audits))
	assert.Len(t, audits.Items, 2)
}

func TestGetBatch_BadID(t *testing.T) {
	r := setupRouter(t)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/batches/not-a-uuid").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/batches/not-a-uuid/audits").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/batches/6f1c2a3e-1111-4a4a-9b9b-000000000000").Code)
}
