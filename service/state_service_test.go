package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jackpot/config"
	"jackpot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupStateTest(t *testing.T) (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockPoolRepository, *MockBetRepository) {
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockPoolRepo := new(MockPoolRepository)
	mockBetRepo := new(MockBetRepository)
	mockUoW.SetRepositories(nil, mockPoolRepo, mockBetRepo, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUoW, mockPoolRepo, mockBetRepo
}

func TestStateService_GetPoolState(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockPoolRepo, mockBetRepo := setupStateTest(t)

	name := "Linus"
	now := time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)
	wins := []*models.WinningBet{
		{BetRecord: models.BetRecord{ID: 9, Amount: 10, Roll: 100, IsWin: true, Payout: 510, CreatedAt: now}, FirstName: &name},
		{BetRecord: models.BetRecord{ID: 8, Amount: 5, Roll: 70, IsWin: true, Payout: 10, CreatedAt: now.Add(-time.Minute)}},
	}

	mockPoolRepo.On("GetOrCreate", ctx, int64(1000)).Return(&models.Pool{ID: models.PoolID, Amount: 1234}, nil)
	mockBetRepo.On("ListRecentWinning", ctx, 5).Return(wins, nil)
	mockUoW.On("Commit").Return(nil)

	state, err := NewStateService(mockFactory, nil).GetPoolState(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1234), state.PoolAmount)
	require.Len(t, state.RecentWins, 2)

	assert.Equal(t, models.RecentWin{Player: "Linus", Amount: 510, Roll: 100, IsJackpot: true, CreatedAt: now}, state.RecentWins[0])
	assert.Equal(t, "Anonymous", state.RecentWins[1].Player)
	assert.Equal(t, int64(10), state.RecentWins[1].Amount)
	assert.False(t, state.RecentWins[1].IsJackpot)

	mockPoolRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestStateService_GetPoolState_EmptyHistory(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockPoolRepo, mockBetRepo := setupStateTest(t)

	mockPoolRepo.On("GetOrCreate", ctx, int64(1000)).Return(&models.Pool{ID: models.PoolID, Amount: 1000}, nil)
	mockBetRepo.On("ListRecentWinning", ctx, 5).Return([]*models.WinningBet{}, nil)
	mockUoW.On("Commit").Return(nil)

	state, err := NewStateService(mockFactory, nil).GetPoolState(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1000), state.PoolAmount)
	assert.NotNil(t, state.RecentWins)
	assert.Empty(t, state.RecentWins)
}

func TestStateService_GetPoolState_CacheHit(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, _ := setupStateTest(t)
	mockCache := new(MockStateCache)

	cached := &models.PoolState{PoolAmount: 4321, RecentWins: []models.RecentWin{}}
	mockCache.On("Get", ctx).Return(cached, int64(3), nil)

	state, err := NewStateService(mockFactory, mockCache).GetPoolState(ctx)

	require.NoError(t, err)
	assert.Same(t, cached, state)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestStateService_GetPoolState_CacheFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockPoolRepo, mockBetRepo := setupStateTest(t)
	mockCache := new(MockStateCache)

	mockCache.On("Get", ctx).Return(nil, int64(0), errors.New("redis down"))
	mockPoolRepo.On("GetOrCreate", ctx, int64(1000)).Return(&models.Pool{ID: models.PoolID, Amount: 1500}, nil)
	mockBetRepo.On("ListRecentWinning", ctx, 5).Return([]*models.WinningBet{}, nil)
	mockUoW.On("Commit").Return(nil)

	state, err := NewStateService(mockFactory, mockCache).GetPoolState(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1500), state.PoolAmount)
	mockCache.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestStateService_GetPoolState_CacheMissWritesWithObservedGeneration(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockPoolRepo, mockBetRepo := setupStateTest(t)
	mockCache := new(MockStateCache)

	mockCache.On("Get", ctx).Return(nil, int64(7), nil)
	mockCache.On("Set", ctx, int64(7), mock.MatchedBy(func(s *models.PoolState) bool {
		return s.PoolAmount == 1200
	})).Return(nil)
	mockPoolRepo.On("GetOrCreate", ctx, int64(1000)).Return(&models.Pool{ID: models.PoolID, Amount: 1200}, nil)
	mockBetRepo.On("ListRecentWinning", ctx, 5).Return([]*models.WinningBet{}, nil)
	mockUoW.On("Commit").Return(nil)

	state, err := NewStateService(mockFactory, mockCache).GetPoolState(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1200), state.PoolAmount)
	mockCache.AssertExpectations(t)
}

func TestStateService_GetPoolState_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockPoolRepo, _ := setupStateTest(t)

	mockPoolRepo.On("GetOrCreate", ctx, int64(1000)).Return(nil, context.DeadlineExceeded)

	state, err := NewStateService(mockFactory, nil).GetPoolState(ctx)

	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestStateService_GetBet(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, _, mockBetRepo := setupStateTest(t)
	svc := NewStateService(mockFactory, nil)

	_, err := svc.GetBet(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	mockBetRepo.On("GetByID", ctx, int64(3)).Return(nil, nil)
	_, err = svc.GetBet(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	bet := &models.BetRecord{ID: 4, Amount: 10, Roll: 20}
	mockBetRepo.On("GetByID", ctx, int64(4)).Return(bet, nil)
	got, err := svc.GetBet(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, bet, got)
}
