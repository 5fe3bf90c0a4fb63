package service

import (
	"math/rand/v2"

	"jackpot/models"
)

const (
	rollSides    = 100
	lossMaxRoll  = 50
	jackpotRoll  = models.JackpotRoll
	winPayoutMul = 2
)

type globalRandom struct{}

func (globalRandom) Intn(n int) int {
	return rand.IntN(n)
}

// NewRandomSource returns the process-wide random source.
// It is safe for concurrent use.
func NewRandomSource() RandomSource {
	return globalRandom{}
}

// Draw rolls a uniform integer in [1, 100] and settles it
func Draw(source RandomSource, poolAmount, wager int64) models.Outcome {
	roll := source.Intn(rollSides) + 1
	return SettleRoll(roll, poolAmount, wager)
}

// SettleRoll maps a roll to its band and the resulting balance and pool deltas.
//
//	1-50   loss:    balance -w, pool +w
//	51-99  win:     balance +w, pool -w, payout 2w
//	100    jackpot: balance +(floor(pool/2)+w), pool -floor(pool/2)
func SettleRoll(roll int, poolAmount, wager int64) models.Outcome {
	switch {
	case roll <= lossMaxRoll:
		return models.Outcome{
			Roll:         roll,
			Band:         models.BandLoss,
			BalanceDelta: -wager,
			PoolDelta:    wager,
		}
	case roll < jackpotRoll:
		return models.Outcome{
			Roll:         roll,
			Band:         models.BandWin,
			IsWin:        true,
			Payout:       wager * winPayoutMul,
			BalanceDelta: wager,
			PoolDelta:    -wager,
		}
	default:
		pool := models.Pool{Amount: poolAmount}
		share := pool.JackpotShare()
		return models.Outcome{
			Roll:         roll,
			Band:         models.BandJackpot,
			IsWin:        true,
			Payout:       share + wager,
			BalanceDelta: share + wager,
			PoolDelta:    -share,
			JackpotShare: share,
		}
	}
}
