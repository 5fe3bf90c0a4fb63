package models

// Band classifies a roll
type Band string

const (
	BandLoss    Band = "loss"
	BandWin     Band = "win"
	BandJackpot Band = "jackpot"
)

// Outcome is the settled effect of one roll on the wagering account and the pool
type Outcome struct {
	Roll         int
	Band         Band
	IsWin        bool
	Payout       int64
	BalanceDelta int64
	PoolDelta    int64
	JackpotShare int64
}
