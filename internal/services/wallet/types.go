package wallet

import (
	"context"
	"time"

	"walletledger/internal/models"
	"walletledger/internal/services/slip"

	"github.com/shopspring/decimal"
)

// Config holds configuration for wallet operations
type Config struct {
	MaxAmount    decimal.Decimal
	NoteLength   int
	WriteTimeout time.Duration
}

// Result is the outcome shared by every money-moving operation. Code is
// empty on success.
type Result struct {
	Success bool            `json:"success"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message"`
	Balance decimal.Decimal `json:"balance"`
}

type TopUpResult struct {
	Result
	TransactionID uint                `json:"transaction_id,omitempty"`
	Reference     string              `json:"reference,omitempty"`
	Transaction   *models.Transaction `json:"-"`
}

type TransferResult struct {
	Result
	TransferID   uint             `json:"transfer_id,omitempty"`
	ReceiverName string           `json:"receiver_name,omitempty"`
	Transfer     *models.Transfer `json:"-"`
}

type PurchaseResult struct {
	Result
	TransactionID uint `json:"transaction_id,omitempty"`
}

// SlipMatcher verifies a proof against the expected amount.
type SlipMatcher interface {
	Match(ctx context.Context, proof slip.Proof, expected decimal.Decimal) (*slip.SlipData, error)
}

// ProofStore persists uploaded slip images.
type ProofStore interface {
	Save(ctx context.Context, transactionID uint, proof slip.Proof) (string, error)
}

// CacheOperator defines the caching operations the engine needs.
// GetWallet returns a nil wallet on a miss, along with the generation that
// SetWallet must be given. SetWallet drops the write when the wallet was
// invalidated since that generation was read.
type CacheOperator interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, int64, error)
	SetWallet(ctx context.Context, wallet *models.Wallet, generation int64) error
	InvalidateWallet(ctx context.Context, userID uint) error
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(key string)
	RecordCacheMiss(key string)

	// Error metrics
	RecordError(operation, code string)

	// Transaction metrics
	RecordTransaction(kind string, amount float64)
}
