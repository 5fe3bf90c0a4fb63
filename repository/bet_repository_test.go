package repository

import (
	"context"
	"testing"

	"jackpot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRepository_InsertAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accounts := NewAccountRepository(testDB.DB)
	bets := NewBetRepository(testDB.DB)
	ctx := context.Background()

	account, _, err := accounts.Create(ctx, testutil.CreateTestProfile("42", "Ada"), 0)
	require.NoError(t, err)

	bet := testutil.CreateTestBet(account.ID, 10, 100, 1000)
	require.NoError(t, bets.Insert(ctx, bet))
	assert.NotZero(t, bet.ID)
	assert.False(t, bet.CreatedAt.IsZero())

	got, err := bets.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(510), got.Payout)
	assert.True(t, got.IsJackpot())

	missing, err := bets.GetByID(ctx, bet.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := bets.CountByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBetRepository_Insert_RejectsInvalidRoll(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accounts := NewAccountRepository(testDB.DB)
	bets := NewBetRepository(testDB.DB)
	ctx := context.Background()

	account, _, err := accounts.Create(ctx, testutil.CreateTestProfile("42", "Ada"), 0)
	require.NoError(t, err)

	err = bets.Insert(ctx, testutil.CreateTestBet(account.ID, 10, 101, 1000))
	assert.Error(t, err)
}

func TestBetRepository_ListRecentWinning(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accounts := NewAccountRepository(testDB.DB)
	bets := NewBetRepository(testDB.DB)
	ctx := context.Background()

	named, _, err := accounts.Create(ctx, testutil.CreateTestProfile("1", "Ada"), 0)
	require.NoError(t, err)
	anonymous, _, err := accounts.Create(ctx, testutil.CreateTestProfile("2", ""), 0)
	require.NoError(t, err)

	t.Run("empty history", func(t *testing.T) {
		wins, err := bets.ListRecentWinning(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, wins)
	})

	var winIDs []int64
	rolls := []int{60, 10, 75, 100, 3, 51, 99, 20, 88}
	for i, roll := range rolls {
		accountID := named.ID
		if i%2 == 1 {
			accountID = anonymous.ID
		}
		bet := testutil.CreateTestBet(accountID, 10, roll, 1000)
		require.NoError(t, bets.Insert(ctx, bet))
		if bet.IsWin {
			winIDs = append(winIDs, bet.ID)
		}
	}
	require.Len(t, winIDs, 6)

	t.Run("newest five winners first", func(t *testing.T) {
		wins, err := bets.ListRecentWinning(ctx, 5)
		require.NoError(t, err)
		require.Len(t, wins, 5)

		for i, win := range wins {
			assert.Equal(t, winIDs[len(winIDs)-1-i], win.ID)
			assert.True(t, win.IsWin)
		}
		for i := 1; i < len(wins); i++ {
			assert.False(t, wins[i].CreatedAt.After(wins[i-1].CreatedAt))
		}
	})

	t.Run("first name joined from account", func(t *testing.T) {
		wins, err := bets.ListRecentWinning(ctx, 10)
		require.NoError(t, err)
		for _, win := range wins {
			if win.AccountID == named.ID {
				require.NotNil(t, win.FirstName)
				assert.Equal(t, "Ada", *win.FirstName)
			} else {
				assert.Nil(t, win.FirstName)
			}
		}
	})
}
