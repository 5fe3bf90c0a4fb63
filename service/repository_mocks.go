package service

import (
	"context"
	"time"

	"jackpot/events"
	"jackpot/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByKey(ctx context.Context, accountKey string) (*models.Account, error) {
	args := m.Called(ctx, accountKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByKeyForUpdate(ctx context.Context, accountKey string) (*models.Account, error) {
	args := m.Called(ctx, accountKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, profile models.AccountProfile, initialBalance int64) (*models.Account, bool, error) {
	args := m.Called(ctx, profile, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Account), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) ConditionalAdjustBalance(ctx context.Context, accountKey string, delta int64, minBalance int64) (int64, error) {
	args := m.Called(ctx, accountKey, delta, minBalance)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ClaimAllowance(ctx context.Context, accountKey string, amount int64, now time.Time, cooldown time.Duration) (*models.Account, error) {
	args := m.Called(ctx, accountKey, amount, now, cooldown)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// MockPoolRepository is a mock implementation of PoolRepository
type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) Get(ctx context.Context) (*models.Pool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pool), args.Error(1)
}

func (m *MockPoolRepository) GetOrCreate(ctx context.Context, seedAmount int64) (*models.Pool, error) {
	args := m.Called(ctx, seedAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pool), args.Error(1)
}

func (m *MockPoolRepository) GetOrCreateForUpdate(ctx context.Context, seedAmount int64) (*models.Pool, error) {
	args := m.Called(ctx, seedAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pool), args.Error(1)
}

func (m *MockPoolRepository) Adjust(ctx context.Context, delta int64) (int64, error) {
	args := m.Called(ctx, delta)
	return args.Get(0).(int64), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Insert(ctx context.Context, bet *models.BetRecord) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.BetRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetRecord), args.Error(1)
}

func (m *MockBetRepository) ListRecentWinning(ctx context.Context, limit int) ([]*models.WinningBet, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WinningBet), args.Error(1)
}

func (m *MockBetRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockStateCache is a mock implementation of StateCache
type MockStateCache struct {
	mock.Mock
}

func (m *MockStateCache) Get(ctx context.Context) (*models.PoolState, int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).(*models.PoolState), args.Get(1).(int64), args.Error(2)
}

func (m *MockStateCache) Set(ctx context.Context, generation int64, state *models.PoolState) error {
	args := m.Called(ctx, generation, state)
	return args.Error(0)
}

func (m *MockStateCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	accountRepo AccountRepository
	poolRepo    PoolRepository
	betRepo     BetRepository
	eventBus    EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(accountRepo AccountRepository, poolRepo PoolRepository, betRepo BetRepository, eventBus EventPublisher) {
	m.accountRepo = accountRepo
	m.poolRepo = poolRepo
	m.betRepo = betRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) BeginSerializable(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) PoolRepository() PoolRepository {
	return m.poolRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockMetricsRecorder is a mock implementation of MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) RecordSettlementDuration(mode string, result string, duration time.Duration) {
	m.Called(mode, result, duration)
}

func (m *MockMetricsRecorder) RecordSettlementRetry(mode string) {
	m.Called(mode)
}
