package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Create(ctx context.Context, batch *models.ReconciliationBatch) error {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return storeError("create batch", err)
	}
	return nil
}

func (r *BatchRepository) Save(ctx context.Context, batch *models.ReconciliationBatch) error {
	if err := r.db.WithContext(ctx).Save(batch).Error; err != nil {
		return storeError("save batch", err)
	}
	return nil
}

func (r *BatchRepository) Get(ctx context.Context, id uuid.UUID) (*models.ReconciliationBatch, error) {
	var batch models.ReconciliationBatch
	err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeError("get batch", err)
	}
	return &batch, nil
}

func (r *BatchRepository) CreateAudit(ctx context.Context, audit *models.SettlementAudit) error {
	if err := r.db.WithContext(ctx).Create(audit).Error; err != nil {
		return storeError("create settlement audit", err)
	}
	return nil
}

func (r *BatchRepository) ListAudits(ctx context.Context, batchID uuid.UUID) ([]models.SettlementAudit, error) {
	var audits []models.SettlementAudit
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC, guide_id ASC").
		Find(&audits).Error
	if err != nil {
		return nil, storeError("list settlement audits", err)
	}
	return audits, nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
