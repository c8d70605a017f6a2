package wallet

import (
	"context"

	"walletledger/internal/models"
	"walletledger/internal/services/slip"

	"github.com/shopspring/decimal"
)

// Service defines the main wallet service interface
type Service interface {
	// Wallet reads
	GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
	FindReceiver(ctx context.Context, email string) (*models.User, error)

	// Money movements
	ProcessTopUp(ctx context.Context, userID uint, proof slip.Proof, amount decimal.Decimal) *TopUpResult
	Transfer(ctx context.Context, senderUserID uint, receiverEmail string, amount decimal.Decimal, note string) *TransferResult
	Purchase(ctx context.Context, userID uint, amount decimal.Decimal, description string) *PurchaseResult
}
