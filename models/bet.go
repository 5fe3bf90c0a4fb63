package models

import "time"

// JackpotRoll is the roll value that pays out part of the pool
const JackpotRoll = 100

// BetRecord is the immutable ledger entry of one settled wager
type BetRecord struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Amount    int64     `db:"amount"`
	Roll      int       `db:"roll"`
	IsWin     bool      `db:"is_win"`
	Payout    int64     `db:"payout"`
	CreatedAt time.Time `db:"created_at"`
}

// IsJackpot reports whether the bet hit the jackpot roll
func (b *BetRecord) IsJackpot() bool {
	return b.Roll == JackpotRoll
}

// NetChange returns the balance change this bet caused.
// A jackpot credits the whole payout; a regular win returns the stake plus an equal gain.
func (b *BetRecord) NetChange() int64 {
	switch {
	case !b.IsWin:
		return -b.Amount
	case b.IsJackpot():
		return b.Payout
	default:
		return b.Payout - b.Amount
	}
}

// WinningBet is a winning bet joined with its account's display name
type WinningBet struct {
	BetRecord
	FirstName *string `db:"first_name"`
}

// DisplayName returns the winner's first name, or fallback when the account has none
func (w *WinningBet) DisplayName(fallback string) string {
	return (&Account{FirstName: w.FirstName}).DisplayName(fallback)
}
