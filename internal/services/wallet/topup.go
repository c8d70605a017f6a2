package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	derrors "walletledger/internal/errors"
	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/services/slip"
	"walletledger/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcessTopUp converts a slip into wallet credit. Once the PENDING entry
// exists, every outcome (including panics in the verification path) ends in
// SUCCESS or FAILED on that entry.
func (s *service) ProcessTopUp(ctx context.Context, userID uint, proof slip.Proof, amount decimal.Decimal) *TopUpResult {
	start := time.Now()

	if err := validation.ValidateAmount(amount, s.config.MaxAmount); err != nil {
		derr := derrors.As(err)
		s.recordOutcome(OperationTopUp, start, derr)
		return &TopUpResult{Result: failedResult(derr, decimal.Zero)}
	}
	amount = amount.Round(validation.AmountScale)

	ctx = context.WithoutCancel(ctx)
	log := zap.L().With(zap.Uint("user_id", userID), zap.String("amount", amount.StringFixed(2)))

	if _, err := s.repo.GetOrCreate(ctx, userID); err != nil {
		log.Error("top-up aborted: wallet unavailable", zap.Error(err))
		derr := derrors.ErrInternal.WithMessage("wallet unavailable")
		s.recordOutcome(OperationTopUp, start, derr)
		return &TopUpResult{Result: failedResult(derr, decimal.Zero)}
	}

	txn := &models.Transaction{
		UserID: userID,
		Amount: amount,
		Kind:   models.TransactionKindTopUp,
		Status: models.TransactionStatusPending,
	}
	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		log.Error("top-up aborted: could not record attempt", zap.Error(err))
		derr := derrors.ErrInternal.WithMessage("could not record top-up attempt")
		s.recordOutcome(OperationTopUp, start, derr)
		return &TopUpResult{Result: failedResult(derr, decimal.Zero)}
	}
	log = log.With(zap.Uint("transaction_id", txn.ID))

	result := s.settleTopUp(ctx, txn, proof, log)
	if result.Success {
		s.recordOutcome(OperationTopUp, start, nil)
		s.metrics.RecordTransaction(string(models.TransactionKindTopUp), amountFloat(amount))
	} else {
		s.recordOutcome(OperationTopUp, start, &derrors.DomainError{Code: result.Code, Message: result.Message})
	}
	return result
}

func (s *service) settleTopUp(ctx context.Context, txn *models.Transaction, proof slip.Proof, log *zap.Logger) (result *TopUpResult) {
	var (
		credited  *models.Wallet
		ref       string
		committed bool
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("top-up panicked", zap.Any("panic", r), zap.Bool("committed", committed), zap.Stack("stack"))
			// A committed credit stands; only the post-commit bookkeeping failed.
			if committed {
				result = creditedResult(txn, credited.Balance, ref)
				return
			}
			result = s.failTopUp(ctx, txn, derrors.ErrInternal.WithMessage(fmt.Sprintf("internal error: %v", r)), log)
		}
	}()

	path, err := s.proofs.Save(ctx, txn.ID, proof)
	if err != nil {
		return s.failTopUp(ctx, txn, derrors.ErrInternal.WithMessage("failed to store slip image: "+err.Error()), log)
	}
	if err := s.repo.SetSlipPath(ctx, txn.ID, path); err != nil {
		return s.failTopUp(ctx, txn, derrors.As(err), log)
	}
	txn.SlipImagePath = path

	data, err := s.slips.Match(ctx, proof, txn.Amount)
	if err != nil {
		return s.failTopUp(ctx, txn, derrors.As(err), log)
	}

	ref = strings.TrimSpace(data.Reference)
	if ref != "" {
		used, err := s.repo.ReferenceUsed(ctx, ref)
		if err != nil {
			return s.failTopUp(ctx, txn, derrors.As(err), log)
		}
		if used {
			return s.failTopUp(ctx, txn, duplicateReference(ref), log)
		}
	}

	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		// The unique index decides any race the pre-read above missed.
		if ref != "" {
			if err := tx.ClaimReference(ctx, ref, txn.ID); err != nil {
				return err
			}
		}

		locked, err := tx.LockByUserIDs(ctx, txn.UserID)
		if err != nil {
			return err
		}
		wallet := locked[txn.UserID]
		wallet.Balance = wallet.Balance.Add(txn.Amount)
		wallet.TotalTopup = wallet.TotalTopup.Add(txn.Amount)
		if err := tx.UpdateBalances(ctx, wallet); err != nil {
			return err
		}

		done := *txn
		now := time.Now()
		done.Status = models.TransactionStatusSuccess
		done.VerifiedAt = &now
		if ref != "" {
			done.RefTransactionID = &ref
		}
		done.SenderName = data.SenderName
		done.ReceiverName = data.ReceiverName
		done.OraclePayload = models.JSON(data.Raw)
		if err := tx.FinalizeTransaction(ctx, &done); err != nil {
			return err
		}

		*txn = done
		credited = wallet
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateReference) {
		return s.failTopUp(ctx, txn, duplicateReference(ref), log)
	}
	if err != nil {
		return s.failTopUp(ctx, txn, derrors.As(err), log)
	}
	committed = true

	s.invalidateWalletCaches(ctx, txn.UserID)
	log.Info("top-up credited", zap.String("reference", ref), zap.String("balance", credited.Balance.StringFixed(2)))

	return creditedResult(txn, credited.Balance, ref)
}

func creditedResult(txn *models.Transaction, balance decimal.Decimal, ref string) *TopUpResult {
	return &TopUpResult{
		Result: Result{
			Success: true,
			Message: fmt.Sprintf("top-up of %s credited", txn.Amount.StringFixed(2)),
			Balance: balance,
		},
		TransactionID: txn.ID,
		Reference:     ref,
		Transaction:   txn,
	}
}

// failTopUp writes FAILED with the reason. The write uses its own bounded
// context so an expired operation context cannot leave the entry PENDING.
func (s *service) failTopUp(ctx context.Context, txn *models.Transaction, derr *derrors.DomainError, log *zap.Logger) *TopUpResult {
	writeCtx, cancel := s.terminalContext(ctx)
	defer cancel()

	reason := derr.Message
	failed := *txn
	failed.Status = models.TransactionStatusFailed
	failed.FailureReason = &reason
	failed.RefTransactionID = nil
	failed.VerifiedAt = nil
	if err := s.repo.FinalizeTransaction(writeCtx, &failed); err != nil {
		if errors.Is(err, repositories.ErrStaleTransition) {
			// Already terminal; report what was stored.
			if stored, gerr := s.repo.GetTransactionByID(writeCtx, txn.ID); gerr == nil {
				*txn = *stored
				return s.storedTopUpResult(writeCtx, txn, derr, log)
			}
		}
		log.Error("failed to mark top-up FAILED", zap.Error(err))
	}
	*txn = failed

	log.Warn("top-up failed", zap.String("code", derr.Code), zap.String("reason", reason))

	balance := decimal.Zero
	if wallet, err := s.repo.GetByUserID(writeCtx, txn.UserID); err == nil {
		balance = wallet.Balance
	}
	return &TopUpResult{
		Result:        failedResult(derr, balance),
		TransactionID: txn.ID,
		Transaction:   txn,
	}
}

func duplicateReference(ref string) *derrors.DomainError {
	return derrors.ErrDuplicateReference.WithMessage(fmt.Sprintf("slip already used (reference %s)", ref))
}

// storedTopUpResult reports an entry that reached a terminal state elsewhere.
func (s *service) storedTopUpResult(ctx context.Context, stored *models.Transaction, derr *derrors.DomainError, log *zap.Logger) *TopUpResult {
	balance := decimal.Zero
	if wallet, err := s.repo.GetByUserID(ctx, stored.UserID); err == nil {
		balance = wallet.Balance
	}

	if stored.Status == models.TransactionStatusSuccess {
		log.Warn("top-up already credited, ignoring late failure", zap.String("code", derr.Code), zap.String("reason", derr.Message))
		ref := ""
		if stored.RefTransactionID != nil {
			ref = *stored.RefTransactionID
		}
		return creditedResult(stored, balance, ref)
	}

	if stored.FailureReason != nil {
		derr = derr.WithMessage(*stored.FailureReason)
	}
	return &TopUpResult{
		Result:        failedResult(derr, balance),
		TransactionID: stored.ID,
		Transaction:   stored,
	}
}
