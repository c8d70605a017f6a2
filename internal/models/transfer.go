package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusSuccess TransferStatus = "SUCCESS"
	TransferStatusFailed  TransferStatus = "FAILED"
)

// Transfer is a peer-to-peer movement between two wallets. It is written
// once, either SUCCESS together with both balance changes, or FAILED when
// the movement could not be applied.
type Transfer struct {
	ID                   uint                `gorm:"primarykey" json:"id"`
	SenderUserID         uint                `gorm:"index;not null" json:"sender_user_id"`
	ReceiverUserID       uint                `gorm:"index;not null" json:"receiver_user_id"`
	Amount               decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"amount"`
	Note                 string              `gorm:"size:500" json:"note,omitempty"`
	Status               TransferStatus      `gorm:"type:varchar(16);not null;index" json:"status"`
	FailureReason        *string             `gorm:"size:1000" json:"failure_reason,omitempty"`
	SenderBalanceAfter   decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"sender_balance_after"`
	ReceiverBalanceAfter decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"receiver_balance_after"`
	CreatedAt            time.Time           `gorm:"index" json:"created_at"`
}

func (Transfer) TableName() string {
	return "wallet_transfers"
}
