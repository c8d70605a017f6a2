package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	derrors "walletledger/internal/errors"
	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Purchase debits the wallet for a checkout. An insufficient balance leaves
// no ledger entry behind.
func (s *service) Purchase(ctx context.Context, userID uint, amount decimal.Decimal, description string) *PurchaseResult {
	start := time.Now()
	fail := func(derr *derrors.DomainError, balance decimal.Decimal) *PurchaseResult {
		s.recordOutcome(OperationPurchase, start, derr)
		return &PurchaseResult{Result: failedResult(derr, balance)}
	}

	if err := validation.ValidateAmount(amount, s.config.MaxAmount); err != nil {
		return fail(derrors.As(err), decimal.Zero)
	}
	amount = amount.Round(validation.AmountScale)

	ctx = context.WithoutCancel(ctx)
	log := zap.L().With(zap.Uint("user_id", userID), zap.String("amount", amount.StringFixed(2)))

	if _, err := s.repo.GetOrCreate(ctx, userID); err != nil {
		log.Error("purchase aborted: wallet unavailable", zap.Error(err))
		return fail(derrors.ErrInternal.WithMessage("wallet unavailable"), decimal.Zero)
	}

	var (
		wallet *models.Wallet
		entry  *models.Transaction
		seen   decimal.Decimal
	)
	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		locked, err := tx.LockByUserIDs(ctx, userID)
		if err != nil {
			return err
		}
		w := locked[userID]
		seen = w.Balance

		if w.Balance.LessThan(amount) {
			return derrors.ErrInsufficientFunds.WithMessage(fmt.Sprintf(
				"insufficient balance: available %s, required %s",
				w.Balance.StringFixed(2), amount.StringFixed(2)))
		}

		w.Balance = w.Balance.Sub(amount)
		if err := tx.UpdateBalances(ctx, w); err != nil {
			return err
		}

		now := time.Now()
		e := &models.Transaction{
			UserID:      userID,
			Amount:      amount,
			Kind:        models.TransactionKindPurchase,
			Status:      models.TransactionStatusSuccess,
			Description: validation.TruncateText(description, validation.MaxDescriptionLength),
			VerifiedAt:  &now,
		}
		if err := tx.CreateTransaction(ctx, e); err != nil {
			return err
		}

		wallet, entry = w, e
		return nil
	})
	if err != nil {
		derr := derrors.As(err)
		if errors.Is(derr, derrors.ErrInsufficientFunds) {
			log.Warn("purchase rejected", zap.String("reason", derr.Message))
			return fail(derr, seen)
		}
		log.Error("purchase failed", zap.Error(err))
		return fail(derrors.ErrInternal.WithMessage("purchase failed: "+derr.Message), seen)
	}

	s.invalidateWalletCaches(ctx, userID)
	s.recordOutcome(OperationPurchase, start, nil)
	s.metrics.RecordTransaction(string(models.TransactionKindPurchase), amountFloat(amount))
	log.Info("purchase debited", zap.Uint("transaction_id", entry.ID))

	return &PurchaseResult{
		Result: Result{
			Success: true,
			Message: fmt.Sprintf("paid %s from wallet", amount.StringFixed(2)),
			Balance: wallet.Balance,
		},
		TransactionID: entry.ID,
	}
}
