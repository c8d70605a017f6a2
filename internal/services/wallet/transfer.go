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
	"walletledger/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Transfer moves amount from the sender's wallet to the wallet of the user
// registered under receiverEmail.
func (s *service) Transfer(ctx context.Context, senderUserID uint, receiverEmail string, amount decimal.Decimal, note string) *TransferResult {
	start := time.Now()
	fail := func(derr *derrors.DomainError) *TransferResult {
		s.recordOutcome(OperationTransfer, start, derr)
		return &TransferResult{Result: failedResult(derr, decimal.Zero)}
	}

	if err := validation.ValidateAmount(amount, s.config.MaxAmount); err != nil {
		return fail(derrors.As(err))
	}
	amount = amount.Round(validation.AmountScale)

	receiver, err := s.FindReceiver(ctx, strings.TrimSpace(receiverEmail))
	if err != nil {
		return fail(derrors.As(err))
	}
	if receiver.ID == senderUserID {
		return fail(derrors.ErrSelfTransfer)
	}

	ctx = context.WithoutCancel(ctx)
	note = validation.TruncateText(note, s.config.NoteLength)
	log := zap.L().With(
		zap.Uint("sender_id", senderUserID),
		zap.Uint("receiver_id", receiver.ID),
		zap.String("amount", amount.StringFixed(2)),
	)

	record := &models.Transfer{
		SenderUserID:   senderUserID,
		ReceiverUserID: receiver.ID,
		Amount:         amount,
		Note:           note,
	}

	for _, id := range []uint{senderUserID, receiver.ID} {
		if _, err := s.repo.GetOrCreate(ctx, id); err != nil {
			return s.failTransfer(ctx, record, derrors.As(err), start, log)
		}
	}

	var senderWallet *models.Wallet
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		locked, err := tx.LockByUserIDs(ctx, senderUserID, receiver.ID)
		if err != nil {
			return err
		}
		from, to := locked[senderUserID], locked[receiver.ID]

		if from.Balance.LessThan(amount) {
			return derrors.ErrInsufficientFunds.WithMessage(fmt.Sprintf(
				"insufficient balance: available %s, requested %s",
				from.Balance.StringFixed(2), amount.StringFixed(2)))
		}

		from.Balance = from.Balance.Sub(amount)
		to.Balance = to.Balance.Add(amount)
		if err := tx.UpdateBalances(ctx, from); err != nil {
			return err
		}
		if err := tx.UpdateBalances(ctx, to); err != nil {
			return err
		}

		done := *record
		done.Status = models.TransferStatusSuccess
		done.SenderBalanceAfter = decimal.NewNullDecimal(from.Balance)
		done.ReceiverBalanceAfter = decimal.NewNullDecimal(to.Balance)
		if err := tx.CreateTransfer(ctx, &done); err != nil {
			return err
		}

		*record = done
		senderWallet = from
		return nil
	})
	if err != nil {
		return s.failTransfer(ctx, record, derrors.As(err), start, log)
	}

	s.invalidateWalletCaches(ctx, senderUserID, receiver.ID)
	s.recordOutcome(OperationTransfer, start, nil)
	s.metrics.RecordTransaction("TRANSFER", amountFloat(amount))
	log.Info("transfer completed", zap.Uint("transfer_id", record.ID))

	return &TransferResult{
		Result: Result{
			Success: true,
			Message: fmt.Sprintf("transferred %s to %s", amount.StringFixed(2), receiver.DisplayName()),
			Balance: senderWallet.Balance,
		},
		TransferID:   record.ID,
		ReceiverName: receiver.DisplayName(),
		Transfer:     record,
	}
}

// failTransfer records a FAILED transfer in its own write, outside the
// rolled-back transaction. Unexpected errors are reported to the caller as
// InternalError.
func (s *service) failTransfer(ctx context.Context, record *models.Transfer, derr *derrors.DomainError, start time.Time, log *zap.Logger) *TransferResult {
	writeCtx, cancel := s.terminalContext(ctx)
	defer cancel()

	reason := derr.Message
	failed := *record
	failed.ID = 0
	failed.Status = models.TransferStatusFailed
	failed.FailureReason = &reason
	failed.SenderBalanceAfter = decimal.NullDecimal{}
	failed.ReceiverBalanceAfter = decimal.NullDecimal{}
	if err := s.repo.CreateTransfer(writeCtx, &failed); err != nil {
		log.Error("failed to record FAILED transfer", zap.Error(err))
	}

	if !errors.Is(derr, derrors.ErrInsufficientFunds) {
		log.Error("transfer failed", zap.String("reason", reason))
		derr = derrors.ErrInternal.WithMessage("transfer failed: " + reason)
	} else {
		log.Warn("transfer rejected", zap.String("reason", reason))
	}
	s.recordOutcome(OperationTransfer, start, derr)

	balance := decimal.Zero
	if wallet, err := s.repo.GetByUserID(writeCtx, record.SenderUserID); err == nil {
		balance = wallet.Balance
	}
	return &TransferResult{
		Result:   failedResult(derr, balance),
		Transfer: &failed,
	}
}
