package models

import "time"

// UsedReference claims an oracle transaction reference for the top-up that
// consumed it. The unique index is what makes slip redemption single-use.
type UsedReference struct {
	ID            uint      `gorm:"primarykey"`
	Reference     string    `gorm:"size:128;not null;uniqueIndex"`
	TransactionID uint      `gorm:"not null;index"`
	CreatedAt     time.Time
}

func (UsedReference) TableName() string {
	return "used_slip_references"
}
