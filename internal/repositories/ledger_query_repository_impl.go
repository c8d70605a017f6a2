package repositories

import (
	"context"
	"fmt"

	"walletledger/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ledgerQueryRepository struct {
	db *gorm.DB
}

func NewLedgerQueryRepository(db *gorm.DB) LedgerQueryRepository {
	return &ledgerQueryRepository{db: db}
}

func (r *ledgerQueryRepository) ListTransactions(ctx context.Context, filter TransactionFilter, limit, offset int) ([]models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, total, nil
}

func (r *ledgerQueryRepository) ListTransfers(ctx context.Context, userID uint, direction TransferDirection, limit, offset int) ([]models.Transfer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transfer{})
	switch direction {
	case TransferDirectionSent:
		query = query.Where("sender_user_id = ?", userID)
	case TransferDirectionReceived:
		query = query.Where("receiver_user_id = ?", userID)
	default:
		query = query.Where("sender_user_id = ? OR receiver_user_id = ?", userID, userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	var transfers []models.Transfer
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, total, nil
}

func (r *ledgerQueryRepository) AggregateTransactions(ctx context.Context, kind models.TransactionKind, status models.TransactionStatus) (*Aggregate, error) {
	row := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("kind = ? AND status = ?", kind, status).
		Select("COALESCE(SUM(amount), 0), COUNT(*)").
		Row()
	return scanAggregate(row, "transactions")
}

func (r *ledgerQueryRepository) AggregateTransfers(ctx context.Context, status models.TransferStatus) (*Aggregate, error) {
	row := r.db.WithContext(ctx).
		Model(&models.Transfer{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(amount), 0), COUNT(*)").
		Row()
	return scanAggregate(row, "transfers")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAggregate(row rowScanner, what string) (*Aggregate, error) {
	var total decimal.Decimal
	var count int64
	if err := row.Scan(&total, &count); err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", what, err)
	}
	return &Aggregate{Total: total, Count: count}, nil
}
