// Package reporting serves the read side of the ledger: per-user history
// and the admin summary.
package reporting

import (
	"context"
	"fmt"

	"walletledger/internal/models"
	"walletledger/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	DefaultLimit      = 20
	MaxLimit          = 100
	DefaultRecentSize = 10
)

type Service interface {
	TransactionHistory(ctx context.Context, userID uint, status models.TransactionStatus, limit, offset int) ([]models.Transaction, int64, error)
	TransferHistory(ctx context.Context, userID uint, direction repositories.TransferDirection, limit, offset int) ([]models.Transfer, int64, error)
	Summary(ctx context.Context, recent int) (*Summary, error)
	RecentTransactions(ctx context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, int64, error)
}

// Summary is the admin dashboard view of the ledger.
type Summary struct {
	PurchaseRevenue    decimal.Decimal      `json:"purchase_revenue"`
	PurchaseCount      int64                `json:"purchase_count"`
	TopUpTotal         decimal.Decimal      `json:"topup_total"`
	TopUpCount         int64                `json:"topup_count"`
	TransferVolume     decimal.Decimal      `json:"transfer_volume"`
	TransferCount      int64                `json:"transfer_count"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

type service struct {
	ledger repositories.LedgerQueryRepository
}

func NewService(ledger repositories.LedgerQueryRepository) Service {
	if ledger == nil {
		panic("ledger query repository is required")
	}
	return &service{ledger: ledger}
}

func (s *service) TransactionHistory(ctx context.Context, userID uint, status models.TransactionStatus, limit, offset int) ([]models.Transaction, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("unknown transaction status %q", status)
	}
	limit, offset = clampPage(limit, offset)
	return s.ledger.ListTransactions(ctx, repositories.TransactionFilter{UserID: userID, Status: status}, limit, offset)
}

func (s *service) TransferHistory(ctx context.Context, userID uint, direction repositories.TransferDirection, limit, offset int) ([]models.Transfer, int64, error) {
	switch direction {
	case repositories.TransferDirectionSent, repositories.TransferDirectionReceived, repositories.TransferDirectionAll:
	case "":
		direction = repositories.TransferDirectionAll
	default:
		return nil, 0, fmt.Errorf("unknown transfer direction %q", direction)
	}
	limit, offset = clampPage(limit, offset)
	return s.ledger.ListTransfers(ctx, userID, direction, limit, offset)
}

func (s *service) RecentTransactions(ctx context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("unknown transaction status %q", status)
	}
	limit, offset = clampPage(limit, offset)
	return s.ledger.ListTransactions(ctx, repositories.TransactionFilter{Status: status}, limit, offset)
}

func (s *service) Summary(ctx context.Context, recent int) (*Summary, error) {
	purchases, err := s.ledger.AggregateTransactions(ctx, models.TransactionKindPurchase, models.TransactionStatusSuccess)
	if err != nil {
		return nil, err
	}
	topUps, err := s.ledger.AggregateTransactions(ctx, models.TransactionKindTopUp, models.TransactionStatusSuccess)
	if err != nil {
		return nil, err
	}
	transfers, err := s.ledger.AggregateTransfers(ctx, models.TransferStatusSuccess)
	if err != nil {
		return nil, err
	}

	if recent <= 0 {
		recent = DefaultRecentSize
	}
	latest, _, err := s.RecentTransactions(ctx, "", recent, 0)
	if err != nil {
		return nil, err
	}

	return &Summary{
		PurchaseRevenue:    purchases.Total,
		PurchaseCount:      purchases.Count,
		TopUpTotal:         topUps.Total,
		TopUpCount:         topUps.Count,
		TransferVolume:     transfers.Total,
		TransferCount:      transfers.Count,
		RecentTransactions: latest,
	}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
