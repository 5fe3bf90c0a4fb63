package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jackpot/database"
	"jackpot/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, account_key, first_name, last_name, username, language_code,
	is_premium, balance, last_daily_claim, created_at, updated_at`

// AccountRepository implements service.AccountRepository
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx Queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row, extra ...any) (*models.Account, error) {
	var account models.Account
	dest := []any{
		&account.ID,
		&account.AccountKey,
		&account.FirstName,
		&account.LastName,
		&account.Username,
		&account.LanguageCode,
		&account.IsPremium,
		&account.Balance,
		&account.LastDailyClaim,
		&account.CreatedAt,
		&account.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByKey retrieves an account by its key
func (r *AccountRepository) GetByKey(ctx context.Context, accountKey string) (*models.Account, error) {
	defer measure("account", "GetByKey")()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_key = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %q: %w", accountKey, err)
	}

	return account, nil
}

// GetByKeyForUpdate retrieves an account and locks its row
func (r *AccountRepository) GetByKeyForUpdate(ctx context.Context, accountKey string) (*models.Account, error) {
	defer measure("account", "GetByKeyForUpdate")()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_key = $1 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %q: %w", accountKey, err)
	}

	return account, nil
}

// Create inserts an account or refreshes the profile of an existing one.
// The balance of an existing account is never touched.
func (r *AccountRepository) Create(ctx context.Context, profile models.AccountProfile, initialBalance int64) (*models.Account, bool, error) {
	defer measure("account", "Create")()

	query := `
		INSERT INTO accounts (account_key, first_name, last_name, username, language_code, is_premium, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (account_key) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			language_code = EXCLUDED.language_code,
			is_premium = EXCLUDED.is_premium,
			updated_at = NOW()
		RETURNING ` + accountColumns + `, (xmax = 0) AS inserted
	`

	var inserted bool
	account, err := scanAccount(r.q.QueryRow(ctx, query,
		profile.AccountKey,
		profile.FirstName,
		profile.LastName,
		profile.Username,
		profile.LanguageCode,
		profile.IsPremium,
		initialBalance,
	), &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account %q: %w", profile.AccountKey, err)
	}

	return account, inserted, nil
}

// ConditionalAdjustBalance adds delta to the balance if the result stays >= minBalance
func (r *AccountRepository) ConditionalAdjustBalance(ctx context.Context, accountKey string, delta int64, minBalance int64) (int64, error) {
	defer measure("account", "ConditionalAdjustBalance")()

	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE account_key = $1 AND balance + $2 >= $3
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, accountKey, delta, minBalance).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrConditionFailed
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance for account %q: %w", accountKey, err)
	}

	return newBalance, nil
}

// ClaimAllowance credits amount if no claim happened within cooldown of now
func (r *AccountRepository) ClaimAllowance(ctx context.Context, accountKey string, amount int64, now time.Time, cooldown time.Duration) (*models.Account, error) {
	defer measure("account", "ClaimAllowance")()

	query := `
		UPDATE accounts
		SET balance = balance + $2, last_daily_claim = $3, updated_at = NOW()
		WHERE account_key = $1
		  AND (last_daily_claim IS NULL OR last_daily_claim <= $4)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountKey, amount, now, now.Add(-cooldown)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConditionFailed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim allowance for account %q: %w", accountKey, err)
	}

	return account, nil
}
