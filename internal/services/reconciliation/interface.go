package reconciliation

import (
	"context"

	"github.com/google/uuid"

	"github.com/ssmgcode/cargo-expreso-control/internal/models"
)

// GuideRepository is the persistence gateway for the general guides collection.
//
//go:generate mockgen -destination=mocks/mock_interface.go -package=mocks -source=interface.go
type GuideRepository interface {
	// InsertIfAbsent stores the guide unless its id already exists; inserted is false on a duplicate.
	InsertIfAbsent(ctx context.Context, guide *models.Guide) (inserted bool, err error)
	// FindByID returns domain.ErrNotFound when no guide has the id.
	FindByID(ctx context.Context, id string) (*models.Guide, error)
	// SetPaid flags the guide as paid. It is a no-op when already paid or absent.
	SetPaid(ctx context.Context, id string) error
}

// SettlementRepository is the persistence gateway for the paid guides collection.
type SettlementRepository interface {
	InsertIfAbsent(ctx context.Context, settlement *models.Settlement) (inserted bool, err error)
	// List returns every settlement, or only the one for guideID when it is not empty.
	List(ctx context.Context, guideID string) ([]models.Settlement, error)
}

// BatchRepository keeps one record per import run plus its commission audits.
type BatchRepository interface {
	Create(ctx context.Context, batch *models.ReconciliationBatch) error
	Save(ctx context.Context, batch *models.ReconciliationBatch) error
	Get(ctx context.Context, id uuid.UUID) (*models.ReconciliationBatch, error)
	CreateAudit(ctx context.Context, audit *models.SettlementAudit) error
	ListAudits(ctx context.Context, batchID uuid.UUID) ([]models.SettlementAudit, error)
}
