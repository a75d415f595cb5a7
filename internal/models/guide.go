package models

import "time"

// Guide is a general shipment-tracking record, keyed by its tracking number.
type Guide struct {
	ID           string    `gorm:"primaryKey;column:id" json:"_id"`
	Date         string    `json:"date"`
	Sender       string    `gorm:"index" json:"sender"`
	Addressee    string    `json:"addressee"`
	Reference1   string    `gorm:"column:reference_1" json:"reference 1"`
	Reference2   string    `gorm:"column:reference_2" json:"reference 2"`
	CreditCode   string    `gorm:"index" json:"credit code"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason"`
	Destination  string    `json:"destination"`
	ReceivedBy   string    `json:"received by"`
	ReceivedDate string    `json:"received date"`
	ReceivedTime string    `json:"received time"`
	GuideType    string    `json:"guide type,omitempty"`
	Paid         bool      `gorm:"index;not null;default:false" json:"paid"`
	CreatedAt    time.Time `json:"-"`
}

func (Guide) TableName() string {
	return "guides"
}
