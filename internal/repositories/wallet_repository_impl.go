package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"walletledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}

	// Concurrent first calls race on the user_id unique index; the loser
	// does nothing and reads the winner's row.
	fresh := &models.Wallet{UserID: userID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(fresh)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *walletRepository) LockByUserIDs(ctx context.Context, userIDs ...uint) (map[uint]*models.Wallet, error) {
	var wallets []models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve wallets: %w", err)
	}

	ids := make([]uint, 0, len(wallets))
	for _, w := range wallets {
		ids = append(ids, w.ID)
	}
	// Fixed acquisition order so opposing transfers cannot deadlock.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[uint]*models.Wallet, len(ids))
	for _, id := range ids {
		var w models.Wallet
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&w, id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to lock wallet %d: %w", id, err)
		}
		locked[w.UserID] = &w
	}

	for _, userID := range userIDs {
		if _, ok := locked[userID]; !ok {
			return nil, ErrWalletNotFound
		}
	}
	return locked, nil
}

func (r *walletRepository) UpdateBalances(ctx context.Context, wallet *models.Wallet) error {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance":     wallet.Balance,
			"total_topup": wallet.TotalTopup,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	result := r.db.WithContext(ctx).Create(tx)
	if result.Error != nil {
		return fmt.Errorf("failed to create transaction: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetTransactionByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *walletRepository) SetSlipPath(ctx context.Context, id uint, path string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("slip_image_path", path)
	if result.Error != nil {
		return fmt.Errorf("failed to record slip path: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *walletRepository) FinalizeTransaction(ctx context.Context, tx *models.Transaction) error {
	if !tx.IsTerminal() {
		return fmt.Errorf("cannot finalise transaction %d with status %s", tx.ID, tx.Status)
	}
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", tx.ID, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":             tx.Status,
			"ref_transaction_id": tx.RefTransactionID,
			"sender_name":        tx.SenderName,
			"receiver_name":      tx.ReceiverName,
			"failure_reason":     tx.FailureReason,
			"oracle_payload":     tx.OraclePayload,
			"verified_at":        tx.VerifiedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finalise transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

func (r *walletRepository) ReferenceUsed(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UsedReference{}).
		Where("reference = ?", reference).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return count > 0, nil
}

func (r *walletRepository) ClaimReference(ctx context.Context, reference string, transactionID uint) error {
	claim := &models.UsedReference{Reference: reference, TransactionID: transactionID}
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to claim reference: %w", err)
	}
	return nil
}

func (r *walletRepository) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *walletRepository) ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &walletRepository{db: tx}
		return fn(txRepo)
	})
}
