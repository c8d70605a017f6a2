package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindTopUp    TransactionKind = "TOPUP"
	TransactionKindPurchase TransactionKind = "PURCHASE"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed:
		return true
	}
	return false
}

// Transaction is a wallet ledger entry: a slip top-up or a checkout purchase.
// A row moves PENDING -> SUCCESS or PENDING -> FAILED exactly once.
type Transaction struct {
	ID               uint              `gorm:"primarykey" json:"id"`
	UserID           uint              `gorm:"index;not null" json:"user_id"`
	Amount           decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"amount"`
	Kind             TransactionKind   `gorm:"type:varchar(16);not null;index" json:"kind"`
	Status           TransactionStatus `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	RefTransactionID *string           `gorm:"size:128;index" json:"ref_transaction_id,omitempty"`
	SenderName       string            `gorm:"size:255" json:"sender_name,omitempty"`
	ReceiverName     string            `gorm:"size:255" json:"receiver_name,omitempty"`
	Description      string            `gorm:"size:500" json:"description,omitempty"`
	SlipImagePath    string            `gorm:"size:512" json:"-"`
	FailureReason    *string           `gorm:"size:1000" json:"failure_reason,omitempty"`
	OraclePayload    JSON              `gorm:"type:jsonb" json:"-"`
	CreatedAt        time.Time         `gorm:"index" json:"created_at"`
	VerifiedAt       *time.Time        `json:"verified_at,omitempty"`
}

func (Transaction) TableName() string {
	return "wallet_transactions"
}

// IsTerminal reports whether the transaction has left PENDING.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
