package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
)

type GuideRepository struct {
	db *gorm.DB
}

func NewGuideRepository(db *gorm.DB) *GuideRepository {
	return &GuideRepository{db: db}
}

// InsertIfAbsent relies on the primary key: a conflicting insert affects no rows.
func (r *GuideRepository) InsertIfAbsent(ctx context.Context, guide *models.Guide) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(guide)
	if result.Error != nil {
		return false, storeError("insert guide", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GuideRepository) FindByID(ctx context.Context, id string) (*models.Guide, error) {
	var guide models.Guide
	err := r.db.WithContext(ctx).First(&guide, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storeError("find guide", err)
	}
	return &guide, nil
}

// SetPaid only touches unpaid guides, so repeated calls and unknown ids are no-ops.
func (r *GuideRepository) SetPaid(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Guide{}).
		Where("id = ? AND paid = ?", id, false).
		Update("paid", true).
		Error
	if err != nil {
		return storeError("set guide paid", err)
	}
	return nil
}
