package models

import "time"

// PoolID is the primary key of the singleton jackpot pool row
const PoolID = 1

// Pool is the shared jackpot balance fed by losing wagers
type Pool struct {
	ID        int16     `db:"id"`
	Amount    int64     `db:"amount"`
	UpdatedAt time.Time `db:"updated_at"`
}

// JackpotShare returns the portion of the pool paid on a jackpot roll.
// Integer division floors the half for any non-negative amount.
func (p *Pool) JackpotShare() int64 {
	if p.Amount <= 0 {
		return 0
	}
	return p.Amount / 2
}
