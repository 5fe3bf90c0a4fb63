package repository

import (
	"context"
	"sync"
	"testing"

	"jackpot/config"
	"jackpot/events"
	"jackpot/repository/testutil"
	"jackpot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constantRoll makes every draw land on the same roll
type constantRoll struct {
	roll int
}

func (c constantRoll) Intn(n int) int {
	return (c.roll - 1) % n
}

func setupSettlement(t *testing.T, maxRetries int) (*testutil.TestDatabase, service.UnitOfWorkFactory) {
	cfg := config.NewTestConfig()
	cfg.SettlementMaxRetries = maxRetries
	config.SetTestConfig(cfg)
	t.Cleanup(config.ResetConfig)

	testDB := testutil.SetupTestDatabase(t)
	return testDB, NewUnitOfWorkFactory(testDB.DB, events.NewBus())
}

func TestSettlement_ConcurrentFullBalanceWagers(t *testing.T) {
	testDB, factory := setupSettlement(t, 10)
	ctx := context.Background()

	const balance = int64(100)
	const workers = 10

	_, _, err := NewAccountRepository(testDB.DB).Create(ctx, testutil.CreateTestProfile("42", "Ada"), balance)
	require.NoError(t, err)

	// Every roll loses, so only one full-balance wager can be funded
	svc := service.NewSettlementService(factory, constantRoll{roll: 10}, nil)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceWager(ctx, "42", balance)
		}(i)
	}
	wg.Wait()

	successes, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, service.ErrInsufficientFunds):
			insufficient++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, insufficient)

	account, err := NewAccountRepository(testDB.DB).GetByKey(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)

	pool, err := NewPoolRepository(testDB.DB).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), pool.Amount)

	count, err := NewBetRepository(testDB.DB).CountByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSettlement_ConcurrentWinsLoseNoUpdates(t *testing.T) {
	testDB, factory := setupSettlement(t, 50)
	ctx := context.Background()

	const wager = int64(10)
	const workers = 8

	_, _, err := NewAccountRepository(testDB.DB).Create(ctx, testutil.CreateTestProfile("42", "Ada"), wager)
	require.NoError(t, err)

	svc := service.NewSettlementService(factory, constantRoll{roll: 75}, nil)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceWager(ctx, "42", wager)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	account, err := NewAccountRepository(testDB.DB).GetByKey(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, wager+workers*wager, account.Balance)

	pool, err := NewPoolRepository(testDB.DB).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000)-workers*wager, pool.Amount)

	// sum(balances) + pool is conserved by wins and losses
	assert.Equal(t, wager+int64(1000), account.Balance+pool.Amount)
}

func TestSettlement_JackpotAgainstRealStore(t *testing.T) {
	testDB, factory := setupSettlement(t, 5)
	ctx := context.Background()

	_, _, err := NewAccountRepository(testDB.DB).Create(ctx, testutil.CreateTestProfile("42", "Ada"), 100)
	require.NoError(t, err)

	result, err := service.NewSettlementService(factory, constantRoll{roll: 100}, nil).PlaceWager(ctx, "42", 10)
	require.NoError(t, err)

	assert.Equal(t, int64(510), result.Payout)
	assert.Equal(t, int64(610), result.NewBalance)
	assert.Equal(t, int64(500), result.NewPoolAmount)

	bet, err := NewBetRepository(testDB.DB).GetByID(ctx, result.BetID)
	require.NoError(t, err)
	require.NotNil(t, bet)
	assert.Equal(t, result.Roll, bet.Roll)
	assert.Equal(t, result.Payout, bet.Payout)
	assert.Equal(t, int64(10), bet.Amount)
	assert.True(t, bet.IsWin)

	state, err := service.NewStateService(factory, nil).GetPoolState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), state.PoolAmount)
	require.Len(t, state.RecentWins, 1)
	assert.Equal(t, "Ada", state.RecentWins[0].Player)
	assert.True(t, state.RecentWins[0].IsJackpot)
}

func TestSettlement_CompensatingModeAgainstRealStore(t *testing.T) {
	testDB, _ := setupSettlement(t, 5)
	ctx := context.Background()

	_, _, err := NewAccountRepository(testDB.DB).Create(ctx, testutil.CreateTestProfile("42", "Ada"), 100)
	require.NoError(t, err)

	svc := service.NewCompensatingSettlementService(service.Repositories{
		Accounts: NewAccountRepository(testDB.DB),
		Pools:    NewPoolRepository(testDB.DB),
		Bets:     NewBetRepository(testDB.DB),
	}, events.NewBus(), constantRoll{roll: 20}, nil)

	result, err := svc.PlaceWager(ctx, "42", 40)
	require.NoError(t, err)
	assert.Equal(t, int64(60), result.NewBalance)
	assert.Equal(t, int64(1040), result.NewPoolAmount)

	_, err = svc.PlaceWager(ctx, "42", 61)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
}
