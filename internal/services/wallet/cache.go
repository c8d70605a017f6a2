package wallet

import (
	"context"

	"walletledger/internal/models"
)

// NoopCache is used when no redis is configured. Every read misses.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint) (*models.Wallet, int64, error) { return nil, 0, nil }
func (NoopCache) SetWallet(context.Context, *models.Wallet, int64) error         { return nil }
func (NoopCache) InvalidateWallet(context.Context, uint) error                   { return nil }
