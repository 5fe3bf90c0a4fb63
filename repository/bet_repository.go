package repository

import (
	"context"
	"errors"
	"fmt"

	"jackpot/database"
	"jackpot/models"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements service.BetRepository.
// Bets are append-only: there is no update or delete path.
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx Queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Insert appends a bet record
func (r *BetRepository) Insert(ctx context.Context, bet *models.BetRecord) error {
	defer measure("bet", "Insert")()

	query := `
		INSERT INTO bets (account_id, amount, roll, is_win, payout)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.AccountID,
		bet.Amount,
		bet.Roll,
		bet.IsWin,
		bet.Payout,
	).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert bet for account %d: %w", bet.AccountID, err)
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.BetRecord, error) {
	defer measure("bet", "GetByID")()

	query := `
		SELECT id, account_id, amount, roll, is_win, payout, created_at
		FROM bets
		WHERE id = $1
	`

	var bet models.BetRecord
	err := r.q.QueryRow(ctx, query, id).Scan(
		&bet.ID,
		&bet.AccountID,
		&bet.Amount,
		&bet.Roll,
		&bet.IsWin,
		&bet.Payout,
		&bet.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}

	return &bet, nil
}

// ListRecentWinning returns the newest winning bets with the winner's first name
func (r *BetRepository) ListRecentWinning(ctx context.Context, limit int) ([]*models.WinningBet, error) {
	defer measure("bet", "ListRecentWinning")()

	query := `
		SELECT b.id, b.account_id, b.amount, b.roll, b.is_win, b.payout, b.created_at, a.first_name
		FROM bets b
		JOIN accounts a ON a.id = b.account_id
		WHERE b.is_win
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent wins: %w", err)
	}
	defer rows.Close()

	wins := make([]*models.WinningBet, 0, limit)
	for rows.Next() {
		var win models.WinningBet
		if err := rows.Scan(
			&win.ID,
			&win.AccountID,
			&win.Amount,
			&win.Roll,
			&win.IsWin,
			&win.Payout,
			&win.CreatedAt,
			&win.FirstName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan winning bet: %w", err)
		}
		wins = append(wins, &win)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating winning bets: %w", err)
	}

	return wins, nil
}

// CountByAccount returns the number of bets an account has placed
func (r *BetRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	defer measure("bet", "CountByAccount")()

	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bets WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bets for account %d: %w", accountID, err)
	}

	return count, nil
}
