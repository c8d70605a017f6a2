package wallet

import (
	"context"
	"sync"
	"testing"

	derrors "walletledger/internal/errors"
	"walletledger/internal/models"
	"walletledger/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer_MovesFundsAndRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com", "Alice")
	bob := f.createUser(t, "bob@example.com", "Bob")
	f.fund(t, alice.ID, "500")

	res := f.svc.Transfer(ctx, alice.ID, "bob@example.com", amt("200"), "lunch")

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "300.00", res.Balance.StringFixed(2))
	assert.Equal(t, "Bob", res.ReceiverName)
	assert.NotZero(t, res.TransferID)
	assert.Equal(t, "300.00", f.balance(t, alice.ID))
	assert.Equal(t, "200.00", f.balance(t, bob.ID))

	require.NotNil(t, res.Transfer)
	assert.Equal(t, models.TransferStatusSuccess, res.Transfer.Status)
	assert.Equal(t, "300.00", res.Transfer.SenderBalanceAfter.Decimal.StringFixed(2))
	assert.Equal(t, "200.00", res.Transfer.ReceiverBalanceAfter.Decimal.StringFixed(2))
	assert.Equal(t, "lunch", res.Transfer.Note)

	assert.GreaterOrEqual(t, f.cache.invalidated[alice.ID], 1)
	assert.GreaterOrEqual(t, f.cache.invalidated[bob.ID], 1)

	// Transfers do not count as top-ups.
	w, err := f.repo.GetByUserID(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, w.TotalTopup.IsZero())
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com", "Alice")
	bob := f.createUser(t, "bob@example.com", "Bob")
	f.fund(t, alice.ID, "500")

	require.True(t, f.svc.Transfer(ctx, alice.ID, "bob@example.com", amt("200"), "").Success)

	res := f.svc.Transfer(ctx, alice.ID, "bob@example.com", amt("400"), "")
	assert.False(t, res.Success)
	assert.Equal(t, derrors.CodeInsufficientFunds, res.Code)
	assert.Equal(t, "300.00", res.Balance.StringFixed(2))
	assert.Equal(t, "300.00", f.balance(t, alice.ID))
	assert.Equal(t, "200.00", f.balance(t, bob.ID))

	transfers, total, err := f.query.ListTransfers(ctx, alice.ID, repositories.TransferDirectionSent, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, models.TransferStatusFailed, transfers[0].Status)
	require.NotNil(t, transfers[0].FailureReason)
	assert.Contains(t, *transfers[0].FailureReason, "insufficient")
	assert.False(t, transfers[0].SenderBalanceAfter.Valid)
	assert.Equal(t, models.TransferStatusSuccess, transfers[1].Status)
}

func TestTransfer_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com", "Alice")
	f.createUser(t, "bob@example.com", "Bob")
	f.fund(t, alice.ID, "100")

	tests := []struct {
		name     string
		receiver string
		amount   string
		wantCode string
	}{
		{"invalid amount checked before receiver", "ghost@example.com", "0", derrors.CodeInvalidAmount},
		{"amount above ceiling", "bob@example.com", "100000.01", derrors.CodeInvalidAmount},
		{"unknown receiver", "ghost@example.com", "10", derrors.CodeReceiverNotFound},
		{"self transfer", "ALICE@example.com", "10", derrors.CodeSelfTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.svc.Transfer(ctx, alice.ID, tt.receiver, amt(tt.amount), "")
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantCode, res.Code)
		})
	}

	assert.Equal(t, "100.00", f.balance(t, alice.ID))
	_, total, err := f.query.ListTransfers(ctx, alice.ID, repositories.TransferDirectionAll, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total, "pre-mutation rejections leave no transfer record")
}

func TestTransfer_ExactBalanceDrainsToZero(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", "Alice")
	f.createUser(t, "bob@example.com", "Bob")
	f.fund(t, alice.ID, "42.42")

	res := f.svc.Transfer(context.Background(), alice.ID, "bob@example.com", amt("42.42"), "")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "0.00", f.balance(t, alice.ID))
}

func TestTransfer_ConcurrentOpposingTransfersConserveValue(t *testing.T) {
	for _, backend := range concurrencyBackends {
		t.Run(backend.name, func(t *testing.T) {
			f := newFixtureOn(t, backend.open(t))
			alice := f.createUser(t, "alice@example.com", "Alice")
			bob := f.createUser(t, "bob@example.com", "Bob")
			f.fund(t, alice.ID, "100")
			f.fund(t, bob.ID, "100")

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					f.svc.Transfer(context.Background(), alice.ID, "bob@example.com", amt("15"), "")
				}()
				go func() {
					defer wg.Done()
					f.svc.Transfer(context.Background(), bob.ID, "alice@example.com", amt("15"), "")
				}()
			}
			wg.Wait()

			a := amt(f.balance(t, alice.ID))
			b := amt(f.balance(t, bob.ID))
			assert.False(t, a.IsNegative())
			assert.False(t, b.IsNegative())
			assert.Equal(t, "200.00", a.Add(b).StringFixed(2))
		})
	}
}
