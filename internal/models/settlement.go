package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement is a paid-guide record reported by a settlement sheet.
// ID is the tracking number of the Guide it settles.
type Settlement struct {
	ID              string          `gorm:"primaryKey;column:id" json:"_id"`
	BatchID         uuid.UUID       `gorm:"type:uuid;index" json:"batch id"`
	Pieces          int             `json:"pieces"`
	Status          string          `json:"status"`
	CODAmount       decimal.Decimal `gorm:"column:cod_amount;type:numeric(14,2)" json:"cod amount"`
	Cash            decimal.Decimal `gorm:"type:numeric(14,2)" json:"cash"`
	Commission      string          `json:"commission"`
	CommissionValue decimal.Decimal `gorm:"type:numeric(14,2)" json:"commission value"`
	SettledAmount   decimal.Decimal `gorm:"type:numeric(14,2)" json:"settled amount"`
	Operation       string          `json:"operation"`
	Authorization   string          `json:"authorization"`
	AccountNumber   string          `json:"account number"`
	CreatedAt       time.Time       `json:"-"`
}

func (Settlement) TableName() string {
	return "paid_guides"
}
