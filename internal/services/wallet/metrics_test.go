package wallet

import (
	"context"
	"testing"

	derrors "walletledger/internal/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_RecordsOutcomes(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg)
	svc := NewService(f.repo, f.users, f.slips, NewDiskProofStore(f.uploadDir), nil, Config{}, metrics)

	alice := f.createUser(t, "alice@example.com", "Alice")
	f.fund(t, alice.ID, "100")

	require.True(t, svc.Purchase(context.Background(), alice.ID, amt("40"), "").Success)
	require.False(t, svc.Purchase(context.Background(), alice.ID, amt("400"), "").Success)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.results.WithLabelValues(OperationPurchase, resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.results.WithLabelValues(OperationPurchase, resultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.errors.WithLabelValues(OperationPurchase, derrors.CodeInsufficientFunds)))
	assert.Equal(t, 40.0, testutil.ToFloat64(metrics.volume.WithLabelValues("PURCHASE")))

	count, err := testutil.GatherAndCount(reg, "wallet_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
