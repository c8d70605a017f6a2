package repositories

import (
	"context"

	"walletledger/internal/models"
)

// WalletRepository is the write side of the ledger: wallets, ledger entries,
// used references and transfers. Methods called on the repository handed to
// ExecuteInTransaction's callback run in that database transaction.
type WalletRepository interface {
	// Wallets
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error)
	// LockByUserIDs row-locks the wallets of the given users in ascending
	// wallet id order and returns them keyed by user id.
	LockByUserIDs(ctx context.Context, userIDs ...uint) (map[uint]*models.Wallet, error)
	UpdateBalances(ctx context.Context, wallet *models.Wallet) error

	// Ledger entries
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactionByID(ctx context.Context, id uint) (*models.Transaction, error)
	SetSlipPath(ctx context.Context, id uint, path string) error
	// FinalizeTransaction writes a terminal status, only if the row is still
	// PENDING. Otherwise it returns ErrStaleTransition.
	FinalizeTransaction(ctx context.Context, tx *models.Transaction) error

	// Slip references
	ReferenceUsed(ctx context.Context, reference string) (bool, error)
	ClaimReference(ctx context.Context, reference string, transactionID uint) error

	// Transfers
	CreateTransfer(ctx context.Context, transfer *models.Transfer) error

	ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error
}
