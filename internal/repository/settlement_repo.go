package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ssmgcode/cargo-expreso-control/internal/models"
)

type SettlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

func (r *SettlementRepository) InsertIfAbsent(ctx context.Context, settlement *models.Settlement) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(settlement)
	if result.Error != nil {
		return false, storeError("insert settlement", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *SettlementRepository) List(ctx context.Context, guideID string) ([]models.Settlement, error) {
	var settlements []models.Settlement
	query := r.db.WithContext(ctx).Order("id ASC")
	if guideID != "" {
		query = query.Where("id = ?", guideID)
	}
	if err := query.Find(&settlements).Error; err != nil {
		return nil, storeError("list settlements", err)
	}
	return settlements, nil
}
