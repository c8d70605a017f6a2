package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds one user's stored value. Balance never goes negative and
// TotalTopup only grows.
type Wallet struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	UserID     uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	TotalTopup decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_topup"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Wallets always open empty
	w.Balance = decimal.Zero
	w.TotalTopup = decimal.Zero
	return nil
}
