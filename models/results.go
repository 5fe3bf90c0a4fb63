package models

import "time"

// WagerResult is returned to the caller after a successful settlement
type WagerResult struct {
	BetID         int64  `json:"betId"`
	Roll          int    `json:"roll"`
	Band          Band   `json:"band"`
	IsWin         bool   `json:"isWin"`
	Payout        int64  `json:"payout"`
	BalanceDelta  int64  `json:"balanceDelta"`
	NewBalance    int64  `json:"newBalance"`
	NewPoolAmount int64  `json:"newPoolAmount"`
	Flavor        Flavor `json:"flavor"`
}

// AllowanceResult is returned after a successful daily allowance claim
type AllowanceResult struct {
	Amount     int64     `json:"amount"`
	NewBalance int64     `json:"newBalance"`
	ClaimedAt  time.Time `json:"claimedAt"`
	Message    string    `json:"message"`
}

// RecentWin is one entry of the recent winners projection
type RecentWin struct {
	Player    string    `json:"player"`
	Amount    int64     `json:"amount"`
	Roll      int       `json:"roll"`
	IsJackpot bool      `json:"isJackpot"`
	CreatedAt time.Time `json:"createdAt"`
}

// PoolState is the read-only projection shown alongside the game
type PoolState struct {
	PoolAmount int64       `json:"poolAmount"`
	RecentWins []RecentWin `json:"recentWins"`
}
