package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SettlementAudit records the commission check made for one matched settlement row.
type SettlementAudit struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BatchID    uuid.UUID       `gorm:"type:uuid;index"`
	GuideID    string          `gorm:"index"`
	Verdict    string          `gorm:"index"`
	Percentage decimal.Decimal `gorm:"type:numeric(8,4)"`
	Expected   decimal.Decimal `gorm:"type:numeric(14,4)"`
	Recorded   decimal.Decimal `gorm:"type:numeric(14,2)"`
	Duplicate  bool
	Details    datatypes.JSON
	CreatedAt  time.Time
}
