package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/logger"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
	service "github.com/ssmgcode/cargo-expreso-control/internal/services/reconciliation"
	"github.com/ssmgcode/cargo-expreso-control/internal/sheet"
)

const (
	settlementsKeyPrefix = "settlements:"
	batchKeyPrefix       = "batch:"
)

// SheetOptions describe where data lives inside uploaded workbooks.
type SheetOptions struct {
	SheetName           string
	SettlementHeaderRow int
}

type ReconciliationHandler struct {
	service *service.ReconciliationService
	cache   *cache.Cache
	sheets  SheetOptions
}

func NewReconciliationHandler(s *service.ReconciliationService, c *cache.Cache, sheets SheetOptions) *ReconciliationHandler {
	return &ReconciliationHandler{service: s, cache: c, sheets: sheets}
}

func (h *ReconciliationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ReconciliationHandler) GetGuide(c *gin.Context) {
	guide, err := h.service.GetGuide(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, guide)
}

// ListSettlements returns paid guides; ?guide_id= narrows the list to one guide.
func (h *ReconciliationHandler) ListSettlements(c *gin.Context) {
	guideID := strings.TrimSpace(c.Query("guide_id"))
	key := settlementsKeyPrefix + guideID

	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, gin.H{"items": cached})
		return
	}

	items, err := h.service.ListSettlements(c.Request.Context(), guideID)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	if items == nil {
		items = []models.Settlement{}
	}
	h.cache.SetDefault(key, items)
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ReconciliationHandler) GetBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	key := batchKeyPrefix + id.String()
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	batch, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	// Batches still running change under us.
	if batch.Status != models.BatchStatusProcessing {
		h.cache.SetDefault(key, batch)
	}
	c.JSON(http.StatusOK, batch)
}

func (h *ReconciliationHandler) ListAudits(c *gin.Context) {
	id, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	audits, err := h.service.ListAudits(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	if audits == nil {
		audits = []models.SettlementAudit{}
	}
	c.JSON(http.StatusOK, gin.H{"items": audits})
}

// UploadGuides imports a general guide workbook sent as multipart field "file".
func (h *ReconciliationHandler) UploadGuides(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	logger.L.Info("Received guide workbook", "file", header.Filename, "size", header.Size)

	rows, err := sheet.ReadGuides(file, h.sheets.SheetName)
	if err != nil {
		logger.L.Warn("Unreadable guide workbook", "file", header.Filename, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.service.ImportGuides(c.Request.Context(), header.Filename, rows)
	if err != nil {
		h.writeError(c, err, rep)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// UploadSettlements reconciles a settlement workbook sent as multipart field "file".
func (h *ReconciliationHandler) UploadSettlements(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	logger.L.Info("Received settlement workbook", "file", header.Filename, "size", header.Size)

	parsed, err := sheet.ReadSettlements(file, h.sheets.SheetName, h.sheets.SettlementHeaderRow)
	if err != nil {
		logger.L.Warn("Unreadable settlement workbook", "file", header.Filename, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.service.ReconcileSettlements(c.Request.Context(), header.Filename, parsed.Meta, parsed.Rows)
	// Partial runs write too.
	h.invalidateSettlements()
	if err != nil {
		h.writeError(c, err, rep)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReconciliationHandler) invalidateSettlements() {
	for key := range h.cache.Items() {
		if strings.HasPrefix(key, settlementsKeyPrefix) {
			h.cache.Delete(key)
		}
	}
}

// writeError maps the error taxonomy onto HTTP statuses. A partial report, when
// present, is returned with the error.
func (h *ReconciliationHandler) writeError(c *gin.Context, err error, rep *domain.BatchReport) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case domain.IsSchemaError(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.L.Error("Request failed", "path", c.FullPath(), "error", err)
	}

	body := gin.H{"error": err.Error()}
	if rep != nil {
		body["report"] = rep
	}
	c.JSON(status, body)
}
