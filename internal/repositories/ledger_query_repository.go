package repositories

import (
	"context"

	"walletledger/internal/models"

	"github.com/shopspring/decimal"
)

type TransferDirection string

const (
	TransferDirectionAll      TransferDirection = "all"
	TransferDirectionSent     TransferDirection = "sent"
	TransferDirectionReceived TransferDirection = "received"
)

// TransactionFilter narrows a ledger listing. Zero values mean "any".
type TransactionFilter struct {
	UserID uint
	Kind   models.TransactionKind
	Status models.TransactionStatus
}

// Aggregate is a sum and count over matching ledger rows.
type Aggregate struct {
	Total decimal.Decimal
	Count int64
}

// LedgerQueryRepository is the read side used by history and admin reports.
// Listings are newest first.
type LedgerQueryRepository interface {
	ListTransactions(ctx context.Context, filter TransactionFilter, limit, offset int) ([]models.Transaction, int64, error)
	ListTransfers(ctx context.Context, userID uint, direction TransferDirection, limit, offset int) ([]models.Transfer, int64, error)
	AggregateTransactions(ctx context.Context, kind models.TransactionKind, status models.TransactionStatus) (*Aggregate, error)
	AggregateTransfers(ctx context.Context, status models.TransferStatus) (*Aggregate, error)
}
