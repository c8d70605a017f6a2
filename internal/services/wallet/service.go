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

type service struct {
	repo    repositories.WalletRepository
	users   repositories.UserRepository
	slips   SlipMatcher
	proofs  ProofStore
	cache   CacheOperator
	config  Config
	metrics MetricsCollector
}

// NewService creates a new wallet service
func NewService(
	repo repositories.WalletRepository,
	users repositories.UserRepository,
	slips SlipMatcher,
	proofs ProofStore,
	cache CacheOperator,
	config Config,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if slips == nil {
		panic("slip matcher is required")
	}
	if proofs == nil {
		panic("proof store is required")
	}

	// Set default configuration values if not provided
	if config.MaxAmount.IsZero() {
		config.MaxAmount = validation.DefaultMaxAmount
	}
	if config.NoteLength <= 0 {
		config.NoteLength = DefaultNoteLength
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}

	// Cache and metrics are optional
	if cache == nil {
		cache = &NoopCache{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		users:   users,
		slips:   slips,
		proofs:  proofs,
		cache:   cache,
		config:  config,
		metrics: metrics,
	}
}

func (s *service) GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	// Try cache first
	cached, generation, cacheErr := s.cache.GetWallet(ctx, userID)
	if cacheErr == nil && cached != nil {
		s.metrics.RecordCacheHit("wallet")
		return cached, nil
	} else if cacheErr != nil {
		zap.L().Warn("wallet cache read failed", zap.Uint("user_id", userID), zap.Error(cacheErr))
	}
	s.metrics.RecordCacheMiss("wallet")

	wallet, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	// Without a generation the write could race an invalidation.
	if cacheErr != nil {
		return wallet, nil
	}
	if err := s.cache.SetWallet(ctx, wallet, generation); err != nil {
		zap.L().Warn("wallet cache write failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return wallet, nil
}

func (s *service) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(OperationBalance, time.Since(start))
	}()

	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		s.metrics.RecordError(OperationBalance, derrors.CodeInternal)
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

func (s *service) FindReceiver(ctx context.Context, email string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, derrors.ErrReceiverNotFound.WithMessage(err.Error())
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, derrors.ErrReceiverNotFound.WithMessage("no user with email " + email)
		}
		return nil, fmt.Errorf("failed to look up receiver: %w", err)
	}
	return user, nil
}

// terminalContext detaches ctx from caller cancellation and bounds it, so
// ledger entries still reach a terminal state after a client disconnect.
func (s *service) terminalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.config.WriteTimeout)
}

// invalidateWalletCaches drops cached snapshots after a commit.
func (s *service) invalidateWalletCaches(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		if err := s.cache.InvalidateWallet(ctx, id); err != nil {
			zap.L().Warn("failed to invalidate wallet cache", zap.Uint("user_id", id), zap.Error(err))
		}
	}
}

func (s *service) recordOutcome(operation string, start time.Time, derr *derrors.DomainError) {
	s.metrics.RecordOperationDuration(operation, time.Since(start))
	if derr != nil {
		s.metrics.RecordOperationResult(operation, resultFailed)
		s.metrics.RecordError(operation, derr.Code)
		return
	}
	s.metrics.RecordOperationResult(operation, resultSuccess)
}

func failedResult(derr *derrors.DomainError, balance decimal.Decimal) Result {
	return Result{
		Success: false,
		Code:    derr.Code,
		Message: derr.Message,
		Balance: balance,
	}
}

func amountFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
