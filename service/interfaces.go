package service

import (
	"context"
	"time"

	"jackpot/events"
	"jackpot/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByKey retrieves an account by its key, returning nil when absent
	GetByKey(ctx context.Context, accountKey string) (*models.Account, error)

	// GetByKeyForUpdate retrieves an account and locks its row for the rest of the transaction
	GetByKeyForUpdate(ctx context.Context, accountKey string) (*models.Account, error)

	// Create inserts an account or refreshes the profile of an existing one.
	// created reports whether a new row was inserted.
	Create(ctx context.Context, profile models.AccountProfile, initialBalance int64) (account *models.Account, created bool, err error)

	// ConditionalAdjustBalance adds delta to the balance only if the result stays >= minBalance.
	// Returns repository.ErrConditionFailed when the predicate rejects the update.
	ConditionalAdjustBalance(ctx context.Context, accountKey string, delta int64, minBalance int64) (int64, error)

	// ClaimAllowance credits amount and stamps last_daily_claim = now if the cooldown has elapsed.
	// Returns repository.ErrConditionFailed when another claim landed inside the window.
	ClaimAllowance(ctx context.Context, accountKey string, amount int64, now time.Time, cooldown time.Duration) (*models.Account, error)
}

// PoolRepository defines the interface for the singleton jackpot pool
type PoolRepository interface {
	// Get returns the pool, or nil if it has not been created yet
	Get(ctx context.Context) (*models.Pool, error)

	// GetOrCreate returns the pool, seeding it with seedAmount on first access
	GetOrCreate(ctx context.Context, seedAmount int64) (*models.Pool, error)

	// GetOrCreateForUpdate is GetOrCreate plus a row lock held until the transaction ends
	GetOrCreateForUpdate(ctx context.Context, seedAmount int64) (*models.Pool, error)

	// Adjust adds delta to the pool and returns the new amount.
	// Returns repository.ErrConditionFailed if the pool would go negative.
	Adjust(ctx context.Context, delta int64) (int64, error)
}

// BetRepository defines the interface for the append-only bet ledger
type BetRepository interface {
	// Insert appends a bet record, filling in its ID and CreatedAt
	Insert(ctx context.Context, bet *models.BetRecord) error

	// GetByID retrieves a bet by its ID, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.BetRecord, error)

	// ListRecentWinning returns the newest winning bets, newest first
	ListRecentWinning(ctx context.Context, limit int) ([]*models.WinningBet, error)

	// CountByAccount returns how many bets an account has placed
	CountByAccount(ctx context.Context, accountID int64) (int64, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// UnitOfWork manages a database transaction and the repositories bound to it
type UnitOfWork interface {
	// Begin starts a read committed transaction
	Begin(ctx context.Context) error

	// BeginSerializable starts a serializable transaction
	BeginSerializable(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback aborts the transaction and drops pending events; no-op after Commit
	Rollback() error

	AccountRepository() AccountRepository
	PoolRepository() PoolRepository
	BetRepository() BetRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// SettlementService settles wagers against the jackpot pool
type SettlementService interface {
	// PlaceWager draws an outcome and applies it to the account, the pool and the bet ledger
	PlaceWager(ctx context.Context, accountKey string, wagerAmount int64) (*models.WagerResult, error)
}

// AllowanceService hands out the daily allowance
type AllowanceService interface {
	// ClaimDailyAllowance credits the allowance once per cooldown window
	ClaimDailyAllowance(ctx context.Context, accountKey string) (*models.AllowanceResult, error)
}

// StateService reports the public game state
type StateService interface {
	// GetPoolState returns the pool amount and the most recent wins
	GetPoolState(ctx context.Context) (*models.PoolState, error)

	// GetBet returns a single bet ledger entry
	GetBet(ctx context.Context, id int64) (*models.BetRecord, error)
}

// AccountService manages account onboarding and lookup
type AccountService interface {
	// EnsureAccount returns the account for the profile, creating it on first sight
	EnsureAccount(ctx context.Context, profile models.AccountProfile) (*models.Account, error)

	// GetAccount returns the account with its bet count
	GetAccount(ctx context.Context, accountKey string) (*models.AccountSummary, error)
}

// StateCache caches the pool state read model.
// Get returns a nil state on a miss, together with the cache generation observed.
// Set stores state only if no Invalidate happened since that generation was read,
// so a reader that raced a settlement cannot re-cache the state from before it.
type StateCache interface {
	Get(ctx context.Context) (state *models.PoolState, generation int64, err error)
	Set(ctx context.Context, generation int64, state *models.PoolState) error
	Invalidate(ctx context.Context) error
}

// RandomSource yields uniform integers in [0, n)
type RandomSource interface {
	Intn(n int) int
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// MetricsRecorder receives settlement measurements the event stream does not carry
type MetricsRecorder interface {
	RecordSettlementDuration(mode string, result string, duration time.Duration)
	RecordSettlementRetry(mode string)
}
