package reporting

import (
	"context"
	"testing"
	"time"

	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/repositories/repotest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedLedger(t *testing.T, db *gorm.DB) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	rows := []models.Transaction{
		{UserID: 1, Amount: decimal.NewFromInt(500), Kind: models.TransactionKindTopUp, Status: models.TransactionStatusSuccess},
		{UserID: 1, Amount: decimal.NewFromInt(500), Kind: models.TransactionKindTopUp, Status: models.TransactionStatusFailed},
		{UserID: 1, Amount: decimal.RequireFromString("120.50"), Kind: models.TransactionKindPurchase, Status: models.TransactionStatusSuccess},
		{UserID: 2, Amount: decimal.NewFromInt(80), Kind: models.TransactionKindPurchase, Status: models.TransactionStatusSuccess},
		{UserID: 2, Amount: decimal.NewFromInt(40), Kind: models.TransactionKindTopUp, Status: models.TransactionStatusPending},
	}
	for i := range rows {
		rows[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	transfers := []models.Transfer{
		{SenderUserID: 1, ReceiverUserID: 2, Amount: decimal.NewFromInt(200), Status: models.TransferStatusSuccess},
		{SenderUserID: 1, ReceiverUserID: 2, Amount: decimal.NewFromInt(400), Status: models.TransferStatusFailed},
		{SenderUserID: 2, ReceiverUserID: 1, Amount: decimal.NewFromInt(25), Status: models.TransferStatusSuccess},
	}
	for i := range transfers {
		transfers[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&transfers[i]).Error)
	}
}

func newTestService(t *testing.T) Service {
	db := repotest.OpenSQLite(t)
	seedLedger(t, db)
	return NewService(repositories.NewLedgerQueryRepository(db))
}

func TestTransactionHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	all, total, err := svc.TransactionHistory(ctx, 1, "", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, models.TransactionKindPurchase, all[0].Kind, "newest first")

	failed, total, err := svc.TransactionHistory(ctx, 1, models.TransactionStatusFailed, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, failed, 1)

	page, total, err := svc.TransactionHistory(ctx, 1, "", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)

	_, _, err = svc.TransactionHistory(ctx, 1, "BOGUS", 10, 0)
	assert.Error(t, err)
}

func TestTransferHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		direction repositories.TransferDirection
		want      int64
	}{
		{repositories.TransferDirectionSent, 2},
		{repositories.TransferDirectionReceived, 1},
		{repositories.TransferDirectionAll, 3},
		{"", 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			_, total, err := svc.TransferHistory(ctx, 1, tt.direction, 10, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}

	_, _, err := svc.TransferHistory(ctx, 1, "sideways", 10, 0)
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	svc := newTestService(t)

	summary, err := svc.Summary(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "200.50", summary.PurchaseRevenue.StringFixed(2))
	assert.EqualValues(t, 2, summary.PurchaseCount)
	assert.Equal(t, "500.00", summary.TopUpTotal.StringFixed(2))
	assert.EqualValues(t, 1, summary.TopUpCount)
	assert.Equal(t, "225.00", summary.TransferVolume.StringFixed(2))
	assert.EqualValues(t, 2, summary.TransferCount)
	require.Len(t, summary.RecentTransactions, 3)
	assert.Equal(t, models.TransactionStatusPending, summary.RecentTransactions[0].Status)
}

func TestSummary_EmptyLedger(t *testing.T) {
	svc := NewService(repositories.NewLedgerQueryRepository(repotest.OpenSQLite(t)))

	summary, err := svc.Summary(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, summary.PurchaseRevenue.IsZero())
	assert.Zero(t, summary.PurchaseCount)
	assert.Empty(t, summary.RecentTransactions)
}

func TestClampPage(t *testing.T) {
	l, o := clampPage(0, -5)
	assert.Equal(t, DefaultLimit, l)
	assert.Equal(t, 0, o)
	l, _ = clampPage(1000, 0)
	assert.Equal(t, MaxLimit, l)
}
