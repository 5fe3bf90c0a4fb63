package repository

import (
	"context"
	"sync"
	"testing"

	"jackpot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRepository_GetOrCreate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPoolRepository(testDB.DB)
	ctx := context.Background()

	pool, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, pool)

	pool, err = repo.GetOrCreate(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), pool.Amount)

	// A later seed never overwrites the live amount
	_, err = repo.Adjust(ctx, 50)
	require.NoError(t, err)
	pool, err = repo.GetOrCreate(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1050), pool.Amount)
}

func TestPoolRepository_GetOrCreate_ConcurrentFirstAccess(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPoolRepository(testDB.DB)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	amounts := make([]int64, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pool, err := repo.GetOrCreate(ctx, 1000)
			errs[i] = err
			if pool != nil {
				amounts[i] = pool.Amount
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(1000), amounts[i])
	}

	var rows int
	err := testDB.DB.QueryRow(ctx, `SELECT COUNT(*) FROM jackpot_pool`).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}

func TestPoolRepository_Adjust(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPoolRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 100)
	require.NoError(t, err)

	amount, err := repo.Adjust(ctx, -100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount)

	_, err = repo.Adjust(ctx, -1)
	assert.ErrorIs(t, err, ErrConditionFailed)

	amount, err = repo.Adjust(ctx, 25)
	require.NoError(t, err)
	assert.Equal(t, int64(25), amount)
}
