package repository

import (
	"context"
	"errors"
	"fmt"

	"jackpot/database"
	"jackpot/models"

	"github.com/jackc/pgx/v5"
)

// PoolRepository implements service.PoolRepository over the singleton jackpot_pool row
type PoolRepository struct {
	q Queryable
}

// NewPoolRepository creates a new pool repository
func NewPoolRepository(db *database.DB) *PoolRepository {
	return &PoolRepository{q: db.Pool}
}

// newPoolRepositoryWithTx creates a new pool repository with a transaction
func newPoolRepositoryWithTx(tx Queryable) *PoolRepository {
	return &PoolRepository{q: tx}
}

// Get returns the pool or nil if it does not exist yet
func (r *PoolRepository) Get(ctx context.Context) (*models.Pool, error) {
	defer measure("pool", "Get")()
	return r.get(ctx, false)
}

// GetOrCreate returns the pool, seeding it on first access
func (r *PoolRepository) GetOrCreate(ctx context.Context, seedAmount int64) (*models.Pool, error) {
	defer measure("pool", "GetOrCreate")()
	return r.getOrCreate(ctx, seedAmount, false)
}

// GetOrCreateForUpdate returns the pool and locks its row
func (r *PoolRepository) GetOrCreateForUpdate(ctx context.Context, seedAmount int64) (*models.Pool, error) {
	defer measure("pool", "GetOrCreateForUpdate")()
	return r.getOrCreate(ctx, seedAmount, true)
}

// getOrCreate inserts the seed row if missing. Concurrent creators race on the
// primary key; the loser's insert is a no-op and it reads the winner's row.
func (r *PoolRepository) getOrCreate(ctx context.Context, seedAmount int64, forUpdate bool) (*models.Pool, error) {
	insert := `
		INSERT INTO jackpot_pool (id, amount)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert, models.PoolID, seedAmount); err != nil {
		return nil, fmt.Errorf("failed to seed jackpot pool: %w", err)
	}

	pool, err := r.get(ctx, forUpdate)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("jackpot pool missing after seed")
	}
	return pool, nil
}

func (r *PoolRepository) get(ctx context.Context, forUpdate bool) (*models.Pool, error) {
	query := `SELECT id, amount, updated_at FROM jackpot_pool WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var pool models.Pool
	err := r.q.QueryRow(ctx, query, models.PoolID).Scan(&pool.ID, &pool.Amount, &pool.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get jackpot pool: %w", err)
	}

	return &pool, nil
}

// Adjust adds delta to the pool unless the result would be negative
func (r *PoolRepository) Adjust(ctx context.Context, delta int64) (int64, error) {
	defer measure("pool", "Adjust")()

	query := `
		UPDATE jackpot_pool
		SET amount = amount + $2, updated_at = NOW()
		WHERE id = $1 AND amount + $2 >= 0
		RETURNING amount
	`

	var amount int64
	err := r.q.QueryRow(ctx, query, models.PoolID, delta).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrConditionFailed
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust jackpot pool by %d: %w", delta, err)
	}

	return amount, nil
}
