// Package cache is a JSON-over-redis read cache for wallet snapshots.
// Entries are advisory: the ledger never reads a cached balance while
// holding a wallet lock.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"walletledger/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Wallet caching
//
// Every wallet has a generation counter next to its snapshot. Invalidation
// bumps the counter, and a read-through write only lands if the counter
// still holds the value seen before the database read. A snapshot read
// before a concurrent commit therefore never overwrites the invalidation.

// generationTTL outlives any in-flight read-through by a wide margin.
const generationTTL = 24 * time.Hour

func (s *CacheService) walletKey(userID uint) string {
	return s.GenerateKey("wallet", "user", userID)
}

func (s *CacheService) walletGenerationKey(userID uint) string {
	return s.GenerateKey("wallet", "gen", userID)
}

// SetWallet stores the snapshot unless the wallet was invalidated after
// generation was read. A skipped write is not an error.
func (s *CacheService) SetWallet(ctx context.Context, wallet *models.Wallet, generation int64) error {
	if wallet == nil {
		return errors.New("cannot cache nil wallet")
	}
	data, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	genKey := s.walletGenerationKey(wallet.UserID)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.walletKey(wallet.UserID), data, s.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// GetWallet returns the cached snapshot (nil on a miss) and the wallet's
// current generation, to be handed back to SetWallet.
func (s *CacheService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, int64, error) {
	vals, err := s.client.MGet(ctx, s.walletKey(userID), s.walletGenerationKey(userID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get cache value: %w", err)
	}

	var generation int64
	if raw, ok := vals[1].(string); ok {
		if generation, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("invalid wallet generation %q: %w", raw, err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, nil
	}
	var wallet models.Wallet
	if err := json.Unmarshal([]byte(raw), &wallet); err != nil {
		return nil, generation, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return &wallet, generation, nil
}

// InvalidateWallet drops the snapshot and bumps the generation in one
// MULTI block.
func (s *CacheService) InvalidateWallet(ctx context.Context, userID uint) error {
	genKey := s.walletGenerationKey(userID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, s.walletKey(userID))
		return nil
	})
	return err
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
