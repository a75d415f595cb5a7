package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BatchKindGuides      = "guides"
	BatchKindSettlements = "settlements"

	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"
)

type ReconciliationBatch struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind     string    `gorm:"index"`
	Filename string

	// Settlement sheet header cells; empty for general imports.
	SheetDate  string
	CreditCode string
	Client     string

	TotalRows       int
	SavedCount      int
	DuplicateCount  int
	InvalidCount    int
	UnmatchedCount  int
	MismatchCount   int
	CODAmount       decimal.Decimal `gorm:"column:cod_amount;type:numeric(14,2)"`
	Cash            decimal.Decimal `gorm:"type:numeric(14,2)"`
	CommissionValue decimal.Decimal `gorm:"type:numeric(14,2)"`
	SettledAmount   decimal.Decimal `gorm:"type:numeric(14,2)"`
	Status          string          `gorm:"index"`
	Error           string
	StartedAt       time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
}
