package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jackpot/config"
	"jackpot/events"
	"jackpot/models"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// ErrConditionFailed is returned by repositories when a conditional write matched no row
var ErrConditionFailed = errors.New("conditional update rejected")

// Repositories groups the pool-backed repositories used outside a unit of work
type Repositories struct {
	Accounts AccountRepository
	Pools    PoolRepository
	Bets     BetRepository
}

type settlementService struct {
	mode       string
	uowFactory UnitOfWorkFactory
	repos      Repositories
	publisher  EventPublisher
	random     RandomSource
	metrics    MetricsRecorder
	poolSeed   int64
	maxRetries int
	newBackOff func() backoff.BackOff
}

// NewSettlementService creates a settlement service that settles each wager
// inside one serializable transaction and retries serialization conflicts.
func NewSettlementService(uowFactory UnitOfWorkFactory, random RandomSource, metrics MetricsRecorder) SettlementService {
	cfg := config.Get()
	return &settlementService{
		mode:       config.SettlementModeTransactional,
		uowFactory: uowFactory,
		random:     random,
		metrics:    metricsOrNoop(metrics),
		poolSeed:   cfg.PoolSeedAmount,
		maxRetries: cfg.SettlementMaxRetries,
		newBackOff: defaultBackOff,
	}
}

// NewCompensatingSettlementService creates a settlement service that issues each
// write as its own statement and reverses earlier writes when a later one fails.
// A concurrent writer can interleave between the balance and pool updates.
func NewCompensatingSettlementService(repos Repositories, publisher EventPublisher, random RandomSource, metrics MetricsRecorder) SettlementService {
	cfg := config.Get()
	return &settlementService{
		mode:      config.SettlementModeCompensating,
		repos:     repos,
		publisher: publisher,
		random:    random,
		metrics:   metricsOrNoop(metrics),
		poolSeed:  cfg.PoolSeedAmount,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}

func (s *settlementService) PlaceWager(ctx context.Context, accountKey string, wagerAmount int64) (*models.WagerResult, error) {
	if accountKey == "" {
		return nil, invalidInput("account key is required")
	}
	if wagerAmount <= 0 {
		return nil, invalidInput("bet amount must be a positive integer")
	}

	start := time.Now()

	var result *models.WagerResult
	var err error
	if s.mode == config.SettlementModeCompensating {
		result, err = s.placeCompensating(ctx, accountKey, wagerAmount)
	} else {
		result, err = s.placeTransactional(ctx, accountKey, wagerAmount)
	}

	s.metrics.RecordSettlementDuration(s.mode, settlementResultLabel(result, err), time.Since(start))

	if err != nil {
		log.WithFields(log.Fields{
			"accountKey": accountKey,
			"betAmount":  wagerAmount,
			"mode":       s.mode,
			"error":      err,
		}).Warn("Wager rejected")
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountKey":   accountKey,
		"betId":        result.BetID,
		"betAmount":    wagerAmount,
		"roll":         result.Roll,
		"band":         result.Band,
		"balanceDelta": result.BalanceDelta,
		"newBalance":   result.NewBalance,
		"poolAmount":   result.NewPoolAmount,
	}).Info("Wager settled")

	return result, nil
}

func (s *settlementService) placeTransactional(ctx context.Context, accountKey string, wagerAmount int64) (*models.WagerResult, error) {
	var result *models.WagerResult
	attempt := 0

	operation := func() error {
		attempt++
		if attempt > 1 {
			s.metrics.RecordSettlementRetry(s.mode)
		}

		r, err := s.settleInTransaction(ctx, accountKey, wagerAmount)
		if err == nil {
			result = r
			return nil
		}
		if isSerializationConflict(err) {
			log.WithFields(log.Fields{
				"accountKey": accountKey,
				"attempt":    attempt,
			}).Debug("Serialization conflict, retrying settlement")
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(s.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, err
		}
		if isSerializationConflict(err) {
			return nil, &Error{
				Kind:    KindStoreUnavailable,
				Message: "settlement contention, please retry",
				Err:     fmt.Errorf("failed to settle wager after %d attempts: %w", attempt, err),
			}
		}
		return nil, storeError("settle wager", err)
	}

	return result, nil
}

// settleInTransaction runs one settlement attempt. Domain rejections come back
// as *Error; store failures are returned wrapped so conflicts stay detectable.
func (s *settlementService) settleInTransaction(ctx context.Context, accountKey string, wagerAmount int64) (*models.WagerResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.BeginSerializable(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByKeyForUpdate(ctx, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, accountNotFound(accountKey)
	}
	if !account.CanAfford(wagerAmount) {
		return nil, insufficientFunds(account.Balance, wagerAmount)
	}

	pool, err := uow.PoolRepository().GetOrCreateForUpdate(ctx, s.poolSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to get jackpot pool: %w", err)
	}
	if wagerAmount > pool.Amount {
		return nil, wagerExceedsPool(wagerAmount, pool.Amount)
	}

	outcome := Draw(s.random, pool.Amount, wagerAmount)

	newBalance, err := uow.AccountRepository().ConditionalAdjustBalance(ctx, accountKey, outcome.BalanceDelta, 0)
	if errors.Is(err, ErrConditionFailed) {
		return nil, insufficientFunds(account.Balance, wagerAmount)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}

	newPoolAmount, err := uow.PoolRepository().Adjust(ctx, outcome.PoolDelta)
	if errors.Is(err, ErrConditionFailed) {
		return nil, &Error{Kind: KindInternal, Message: "internal error", Err: fmt.Errorf("pool adjustment of %d rejected for pool %d", outcome.PoolDelta, pool.Amount)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust jackpot pool: %w", err)
	}

	bet := newBetRecord(account.ID, wagerAmount, outcome)
	if err := uow.BetRepository().Insert(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to record bet: %w", err)
	}

	result := s.buildResult(bet, outcome, newBalance, newPoolAmount)
	publishSettlementEvents(uow.EventBus(), account, bet, result)

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func (s *settlementService) placeCompensating(ctx context.Context, accountKey string, wagerAmount int64) (*models.WagerResult, error) {
	account, err := s.repos.Accounts.GetByKey(ctx, accountKey)
	if err != nil {
		return nil, storeError("get account", err)
	}
	if account == nil {
		return nil, accountNotFound(accountKey)
	}
	if !account.CanAfford(wagerAmount) {
		return nil, insufficientFunds(account.Balance, wagerAmount)
	}

	pool, err := s.repos.Pools.GetOrCreate(ctx, s.poolSeed)
	if err != nil {
		return nil, storeError("get jackpot pool", err)
	}
	if wagerAmount > pool.Amount {
		return nil, wagerExceedsPool(wagerAmount, pool.Amount)
	}

	outcome := Draw(s.random, pool.Amount, wagerAmount)

	// The balance may have moved since the read; the store predicate is the final check.
	newBalance, err := s.repos.Accounts.ConditionalAdjustBalance(ctx, accountKey, outcome.BalanceDelta, 0)
	if errors.Is(err, ErrConditionFailed) {
		return nil, insufficientFunds(account.Balance, wagerAmount)
	}
	if err != nil {
		return nil, storeError("adjust balance", err)
	}

	adjustedPool, err := s.repos.Pools.Adjust(ctx, outcome.PoolDelta)
	if err != nil {
		s.compensateBalance(ctx, accountKey, outcome.BalanceDelta)
		if errors.Is(err, ErrConditionFailed) {
			return nil, wagerExceedsPool(wagerAmount, pool.Amount)
		}
		return nil, storeError("adjust jackpot pool", err)
	}

	bet := newBetRecord(account.ID, wagerAmount, outcome)
	if err := s.repos.Bets.Insert(ctx, bet); err != nil {
		s.compensateBalance(ctx, accountKey, outcome.BalanceDelta)
		s.compensatePool(ctx, outcome.PoolDelta)
		return nil, storeError("record bet", err)
	}

	// The wager is settled from here on; a failed re-read falls back to the post-write amount.
	newPoolAmount := adjustedPool
	current, err := s.repos.Pools.Get(ctx)
	if err != nil {
		log.WithFields(log.Fields{
			"accountKey": accountKey,
			"betId":      bet.ID,
			"error":      err,
		}).Warn("Failed to re-read jackpot pool after settlement")
	} else if current != nil {
		newPoolAmount = current.Amount
	}

	result := s.buildResult(bet, outcome, newBalance, newPoolAmount)
	publishSettlementEvents(s.publisher, account, bet, result)

	return result, nil
}

func (s *settlementService) compensateBalance(ctx context.Context, accountKey string, appliedDelta int64) {
	if _, err := s.repos.Accounts.ConditionalAdjustBalance(ctx, accountKey, -appliedDelta, 0); err != nil {
		log.WithFields(log.Fields{
			"accountKey": accountKey,
			"delta":      -appliedDelta,
			"error":      err,
		}).Error("Failed to reverse balance adjustment")
	}
}

func (s *settlementService) compensatePool(ctx context.Context, appliedDelta int64) {
	if _, err := s.repos.Pools.Adjust(ctx, -appliedDelta); err != nil {
		log.WithFields(log.Fields{
			"delta": -appliedDelta,
			"error": err,
		}).Error("Failed to reverse pool adjustment")
	}
}

func (s *settlementService) buildResult(bet *models.BetRecord, outcome models.Outcome, newBalance, newPoolAmount int64) *models.WagerResult {
	flavorAmount := bet.Amount
	if outcome.IsWin {
		flavorAmount = outcome.BalanceDelta
	}

	return &models.WagerResult{
		BetID:         bet.ID,
		Roll:          outcome.Roll,
		Band:          outcome.Band,
		IsWin:         outcome.IsWin,
		Payout:        outcome.Payout,
		BalanceDelta:  outcome.BalanceDelta,
		NewBalance:    newBalance,
		NewPoolAmount: newPoolAmount,
		Flavor:        GenerateFlavor(s.random, outcome.Roll, outcome.IsWin, flavorAmount),
	}
}

func newBetRecord(accountID, wagerAmount int64, outcome models.Outcome) *models.BetRecord {
	return &models.BetRecord{
		AccountID: accountID,
		Amount:    wagerAmount,
		Roll:      outcome.Roll,
		IsWin:     outcome.IsWin,
		Payout:    outcome.Payout,
	}
}

func publishSettlementEvents(publisher EventPublisher, account *models.Account, bet *models.BetRecord, result *models.WagerResult) {
	settled := events.WagerSettledEvent{
		AccountID:    account.ID,
		AccountKey:   account.AccountKey,
		BetID:        bet.ID,
		Amount:       bet.Amount,
		Roll:         result.Roll,
		Band:         string(result.Band),
		IsWin:        result.IsWin,
		Payout:       result.Payout,
		BalanceDelta: result.BalanceDelta,
		NewBalance:   result.NewBalance,
		PoolAmount:   result.NewPoolAmount,
		SettledAt:    bet.CreatedAt,
	}
	if err := publisher.Publish(settled); err != nil {
		log.WithError(err).Error("Failed to publish wager settled event")
	}

	if result.Band != models.BandJackpot {
		return
	}
	hit := events.JackpotHitEvent{
		AccountKey:   account.AccountKey,
		BetID:        bet.ID,
		JackpotShare: result.Payout - bet.Amount,
		Payout:       result.Payout,
		PoolAmount:   result.NewPoolAmount,
	}
	if err := publisher.Publish(hit); err != nil {
		log.WithError(err).Error("Failed to publish jackpot hit event")
	}
}

func settlementResultLabel(result *models.WagerResult, err error) string {
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return string(svcErr.Kind)
		}
		return string(KindInternal)
	}
	return string(result.Band)
}

type noopMetrics struct{}

func (noopMetrics) RecordSettlementDuration(string, string, time.Duration) {}
func (noopMetrics) RecordSettlementRetry(string)                           {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
