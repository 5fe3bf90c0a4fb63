package service

import (
	"testing"

	"jackpot/models"

	"github.com/stretchr/testify/assert"
)

// fixedRandom returns value modulo n for every draw
type fixedRandom struct {
	value int
}

func (f fixedRandom) Intn(n int) int {
	return f.value % n
}

func TestSettleRoll_Bands(t *testing.T) {
	tests := []struct {
		name         string
		roll         int
		pool         int64
		wager        int64
		band         models.Band
		isWin        bool
		payout       int64
		balanceDelta int64
		poolDelta    int64
	}{
		{"lowest roll loses", 1, 1000, 10, models.BandLoss, false, 0, -10, 10},
		{"upper loss boundary", 50, 1000, 10, models.BandLoss, false, 0, -10, 10},
		{"lower win boundary", 51, 1000, 10, models.BandWin, true, 20, 10, -10},
		{"upper win boundary", 99, 1000, 25, models.BandWin, true, 50, 25, -25},
		{"jackpot", 100, 1000, 10, models.BandJackpot, true, 510, 510, -500},
		{"jackpot floors odd pool", 100, 1001, 10, models.BandJackpot, true, 510, 510, -500},
		{"jackpot on pool of one", 100, 1, 1, models.BandJackpot, true, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := SettleRoll(tt.roll, tt.pool, tt.wager)

			assert.Equal(t, tt.roll, outcome.Roll)
			assert.Equal(t, tt.band, outcome.Band)
			assert.Equal(t, tt.isWin, outcome.IsWin)
			assert.Equal(t, tt.payout, outcome.Payout)
			assert.Equal(t, tt.balanceDelta, outcome.BalanceDelta)
			assert.Equal(t, tt.poolDelta, outcome.PoolDelta)
		})
	}
}

func TestSettleRoll_DeltaArithmetic(t *testing.T) {
	const wager = 33
	for roll := 1; roll <= 100; roll++ {
		outcome := SettleRoll(roll, 777, wager)

		switch outcome.Band {
		case models.BandJackpot:
			assert.Equal(t, int64(388), outcome.JackpotShare)
			assert.Equal(t, int64(wager), outcome.BalanceDelta+outcome.PoolDelta, "roll %d", roll)
		default:
			assert.Zero(t, outcome.BalanceDelta+outcome.PoolDelta, "roll %d", roll)
		}
	}
}

func TestDraw_MapsSourceToRollRange(t *testing.T) {
	counts := map[models.Band]int{}
	for value := 0; value < 100; value++ {
		outcome := Draw(fixedRandom{value: value}, 1000, 10)
		assert.Equal(t, value+1, outcome.Roll)
		counts[outcome.Band]++
	}

	assert.Equal(t, 50, counts[models.BandLoss])
	assert.Equal(t, 49, counts[models.BandWin])
	assert.Equal(t, 1, counts[models.BandJackpot])
}

func TestNewRandomSource_StaysInRange(t *testing.T) {
	source := NewRandomSource()
	for i := 0; i < 1000; i++ {
		v := source.Intn(100)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 100)
	}
}
