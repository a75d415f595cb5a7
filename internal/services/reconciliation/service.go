package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/logger"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
	"github.com/ssmgcode/cargo-expreso-control/internal/normalize"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/builder"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/classifier"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/matching"
	"github.com/ssmgcode/cargo-expreso-control/internal/services/report"
)

type Options struct {
	DropFooter       bool
	IncludeGuideType bool
}

type ReconciliationService struct {
	guideRepo      GuideRepository
	settlementRepo SettlementRepository
	batchRepo      BatchRepository
	builder        *builder.Builder
	opts           Options
	now            func() time.Time
}

func NewReconciliationService(
	guideRepo GuideRepository,
	settlementRepo SettlementRepository,
	batchRepo BatchRepository,
	opts Options,
) *ReconciliationService {
	return &ReconciliationService{
		guideRepo:      guideRepo,
		settlementRepo: settlementRepo,
		batchRepo:      batchRepo,
		builder:        builder.New(builder.Options{IncludeGuideType: opts.IncludeGuideType}),
		opts:           opts,
		now:            time.Now,
	}
}

// ImportGuides classifies, normalizes and stores the rows of a general guide sheet.
//
// A fatal error (schema mismatch or store failure) aborts the run; the partial
// report is still returned alongside the error and nothing is rolled back.
func (s *ReconciliationService) ImportGuides(ctx context.Context, filename string, rows []domain.Row) (*domain.BatchReport, error) {
	batch, err := s.startBatch(ctx, models.BatchKindGuides, filename, domain.SettlementMeta{})
	if err != nil {
		return nil, err
	}
	log := logger.L.With("batch_id", batch.ID.String(), "kind", batch.Kind)
	log.Info("guide import started", "file", filename, "rows", len(rows))

	var outcomes []domain.RowOutcome
	fail := func(err error) (*domain.BatchReport, error) {
		rep := s.finishBatch(ctx, batch, outcomes, domain.BatchTotals{}, err)
		return rep, err
	}

	classified, err := classifier.Classify(rows, classifier.Options{DropFooter: s.opts.DropFooter})
	if err != nil {
		return fail(err)
	}

	for _, row := range classified.Invalid {
		outcomes = append(outcomes, domain.RowOutcome{
			Row:         row.Index,
			GuideID:     trackingNumber(row, classifier.FieldTrackingID),
			Disposition: domain.DispositionInvalid,
			Reason:      "excluded guide",
		})
	}

	for _, row := range classified.Valid {
		guide, err := s.builder.BuildGuide(row)
		if err != nil {
			if domain.IsFormatError(err) {
				log.Warn("guide row skipped", "row", row.Index, "error", err)
				outcomes = append(outcomes, domain.RowOutcome{
					Row:         row.Index,
					GuideID:     trackingNumber(row, builder.ColTrackingID),
					Disposition: domain.DispositionInvalid,
					Reason:      err.Error(),
				})
				continue
			}
			return fail(err)
		}

		inserted, err := s.guideRepo.InsertIfAbsent(ctx, guide)
		if err != nil {
			return fail(unavailable("insert guide "+guide.ID, err))
		}

		outcome := domain.RowOutcome{Row: row.Index, GuideID: guide.ID, Disposition: domain.DispositionSaved}
		if !inserted {
			outcome.Disposition = domain.DispositionDuplicate
			log.Warn("guide already exists", "guide_id", guide.ID)
		} else {
			log.Debug("guide saved", "guide_id", guide.ID)
		}
		outcomes = append(outcomes, outcome)
	}

	return s.finishBatch(ctx, batch, outcomes, domain.BatchTotals{}, nil), nil
}

// ReconcileSettlements links every settlement row to its guide, stores it,
// marks the guide paid, checks the commission and accumulates batch totals.
// Rows are processed strictly in order, one at a time.
func (s *ReconciliationService) ReconcileSettlements(ctx context.Context, filename string, meta domain.SettlementMeta, rows []domain.Row) (*domain.BatchReport, error) {
	batch, err := s.startBatch(ctx, models.BatchKindSettlements, filename, meta)
	if err != nil {
		return nil, err
	}
	log := logger.L.With("batch_id", batch.ID.String(), "kind", batch.Kind)
	log.Info("settlement reconciliation started", "file", filename, "rows", len(rows), "client", meta.Client)

	if s.opts.DropFooter {
		rows = classifier.DropFooter(rows)
	}

	var (
		outcomes []domain.RowOutcome
		totals   domain.BatchTotals
	)
	fail := func(err error) (*domain.BatchReport, error) {
		rep := s.finishBatch(ctx, batch, outcomes, totals, err)
		return rep, err
	}

	for _, row := range rows {
		settlement, err := s.builder.BuildSettlement(row)
		if err != nil {
			if domain.IsFormatError(err) {
				log.Warn("settlement row skipped", "row", row.Index, "error", err)
				outcomes = append(outcomes, domain.RowOutcome{
					Row:         row.Index,
					GuideID:     trackingNumber(row, builder.ColSettlementID),
					Disposition: domain.DispositionInvalid,
					Reason:      err.Error(),
				})
				continue
			}
			return fail(err)
		}
		settlement.BatchID = batch.ID

		outcome, err := s.reconcileOne(ctx, batch.ID, row.Index, settlement, &totals)
		if err != nil {
			return fail(err)
		}
		switch {
		case outcome.Disposition == domain.DispositionUnmatched:
			log.Warn("settlement has no matching guide", "guide_id", settlement.ID, "row", row.Index)
		case outcome.Commission.Verdict == domain.CommissionMismatch:
			log.Warn("commission mismatch",
				"guide_id", settlement.ID,
				"expected", outcome.Commission.Expected.String(),
				"recorded", outcome.Commission.Recorded.String())
		default:
			log.Debug("settlement reconciled", "guide_id", settlement.ID, "disposition", outcome.Disposition)
		}
		outcomes = append(outcomes, outcome)
	}

	return s.finishBatch(ctx, batch, outcomes, totals, nil), nil
}

func (s *ReconciliationService) reconcileOne(ctx context.Context, batchID uuid.UUID, rowIndex int, settlement *models.Settlement, totals *domain.BatchTotals) (domain.RowOutcome, error) {
	outcome := domain.RowOutcome{Row: rowIndex, GuideID: settlement.ID}

	if _, err := s.guideRepo.FindByID(ctx, settlement.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			outcome.Disposition = domain.DispositionUnmatched
			outcome.Reason = "no general guide with this tracking number"
			return outcome, nil
		}
		return outcome, unavailable("find guide "+settlement.ID, err)
	}

	inserted, err := s.settlementRepo.InsertIfAbsent(ctx, settlement)
	if err != nil {
		return outcome, unavailable("insert settlement "+settlement.ID, err)
	}
	outcome.Disposition = domain.DispositionSaved
	if !inserted {
		outcome.Disposition = domain.DispositionDuplicate
	}

	totals.Add(settlement.CODAmount, settlement.Cash, settlement.CommissionValue, settlement.SettledAmount)

	if err := s.guideRepo.SetPaid(ctx, settlement.ID); err != nil {
		return outcome, unavailable("mark guide paid "+settlement.ID, err)
	}

	check, err := matching.CheckCommission(settlement)
	if err != nil {
		return outcome, err
	}
	outcome.Commission = &check

	if err := s.batchRepo.CreateAudit(ctx, newAudit(batchID, settlement, check, !inserted)); err != nil {
		return outcome, unavailable("record commission audit "+settlement.ID, err)
	}
	return outcome, nil
}

func newAudit(batchID uuid.UUID, settlement *models.Settlement, check domain.CommissionCheck, duplicate bool) *models.SettlementAudit {
	details := map[string]interface{}{
		"guide_id":         settlement.ID,
		"commission":       settlement.Commission,
		"cod_amount":       settlement.CODAmount.String(),
		"commission_value": settlement.CommissionValue.String(),
		"expected":         check.Expected.String(),
		"difference":       check.Recorded.Sub(check.Expected).String(),
		"verdict":          check.Verdict,
		"duplicate":        duplicate,
	}
	detailsJSON, _ := json.Marshal(details)

	return &models.SettlementAudit{
		ID:         uuid.New(),
		BatchID:    batchID,
		GuideID:    settlement.ID,
		Verdict:    string(check.Verdict),
		Percentage: check.Percentage,
		Expected:   check.Expected,
		Recorded:   check.Recorded,
		Duplicate:  duplicate,
		Details:    datatypes.JSON(detailsJSON),
	}
}

func (s *ReconciliationService) startBatch(ctx context.Context, kind, filename string, meta domain.SettlementMeta) (*models.ReconciliationBatch, error) {
	now := s.now()
	batch := &models.ReconciliationBatch{
		ID:         uuid.New(),
		Kind:       kind,
		Filename:   filename,
		SheetDate:  meta.Date,
		CreditCode: meta.CreditCode,
		Client:     meta.Client,
		Status:     models.BatchStatusProcessing,
		StartedAt:  now,
		CreatedAt:  now,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, unavailable("create batch", err)
	}
	return batch, nil
}

// finishBatch summarizes the outcomes and persists the final batch state.
// runErr, when set, marks the batch failed.
func (s *ReconciliationService) finishBatch(ctx context.Context, batch *models.ReconciliationBatch, outcomes []domain.RowOutcome, totals domain.BatchTotals, runErr error) *domain.BatchReport {
	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].Row < outcomes[j].Row })

	rep := report.Summarize(batch.Kind, batch.Filename, outcomes, totals)
	rep.BatchID = batch.ID.String()

	completed := s.now()
	batch.TotalRows = rep.Counts.Total
	batch.SavedCount = rep.Counts.Saved
	batch.DuplicateCount = rep.Counts.Duplicate
	batch.InvalidCount = rep.Counts.Invalid
	batch.UnmatchedCount = rep.Counts.Unmatched
	batch.MismatchCount = rep.Counts.CommissionMismatch
	batch.CODAmount = totals.CODAmount
	batch.Cash = totals.Cash
	batch.CommissionValue = totals.CommissionValue
	batch.SettledAmount = totals.SettledAmount
	batch.CompletedAt = &completed
	batch.Status = models.BatchStatusCompleted

	log := logger.L.With("batch_id", batch.ID.String(), "kind", batch.Kind)
	if runErr != nil {
		batch.Status = models.BatchStatusFailed
		batch.Error = runErr.Error()
		log.Error("batch aborted", "error", runErr, "processed", rep.Counts.Total)
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		log.Error("could not persist batch state", "error", err)
	}
	if runErr == nil {
		log.Info("batch completed",
			"saved", rep.Counts.Saved,
			"duplicate", rep.Counts.Duplicate,
			"invalid", rep.Counts.Invalid,
			"unmatched", rep.Counts.Unmatched,
			"commission_mismatch", rep.Counts.CommissionMismatch,
			"cod_amount", rep.Totals.CODAmount)
	}
	return &rep
}

// ListSettlements returns reconciled settlements, optionally only the one for guideID.
func (s *ReconciliationService) ListSettlements(ctx context.Context, guideID string) ([]models.Settlement, error) {
	settlements, err := s.settlementRepo.List(ctx, guideID)
	if err != nil {
		return nil, fmt.Errorf("could not list settlements: %w", err)
	}
	return settlements, nil
}

func (s *ReconciliationService) GetGuide(ctx context.Context, id string) (*models.Guide, error) {
	return s.guideRepo.FindByID(ctx, id)
}

func (s *ReconciliationService) GetBatch(ctx context.Context, id uuid.UUID) (*models.ReconciliationBatch, error) {
	return s.batchRepo.Get(ctx, id)
}

func (s *ReconciliationService) ListAudits(ctx context.Context, batchID uuid.UUID) ([]models.SettlementAudit, error) {
	return s.batchRepo.ListAudits(ctx, batchID)
}

func unavailable(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func trackingNumber(row domain.Row, field string) string {
	v, _ := row.Get(field)
	return normalize.Text(v)
}
