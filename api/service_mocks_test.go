package api

import (
	"context"

	"jackpot/models"

	"github.com/stretchr/testify/mock"
)

type mockSettlementService struct {
	mock.Mock
}

func (m *mockSettlementService) PlaceWager(ctx context.Context, accountKey string, wagerAmount int64) (*models.WagerResult, error) {
	args := m.Called(ctx, accountKey, wagerAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WagerResult), args.Error(1)
}

type mockAllowanceService struct {
	mock.Mock
}

func (m *mockAllowanceService) ClaimDailyAllowance(ctx context.Context, accountKey string) (*models.AllowanceResult, error) {
	args := m.Called(ctx, accountKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AllowanceResult), args.Error(1)
}

type mockStateService struct {
	mock.Mock
}

func (m *mockStateService) GetPoolState(ctx context.Context) (*models.PoolState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PoolState), args.Error(1)
}

func (m *mockStateService) GetBet(ctx context.Context, id int64) (*models.BetRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetRecord), args.Error(1)
}

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) EnsureAccount(ctx context.Context, profile models.AccountProfile) (*models.Account, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockAccountService) GetAccount(ctx context.Context, accountKey string) (*models.AccountSummary, error) {
	args := m.Called(ctx, accountKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountSummary), args.Error(1)
}

type mockPinger struct {
	err error
}

func (p *mockPinger) Ping(ctx context.Context) error {
	return p.err
}
