package cmd

import (
	"fmt"
	"io"
	"math"

	"jackpot/models"
	"jackpot/service"
)

// Expected band probabilities for a uniform roll in [1, 100]
var expectedBandRates = map[models.Band]float64{
	models.BandLoss:    0.50,
	models.BandWin:     0.49,
	models.BandJackpot: 0.01,
}

// chiSquaredCritical is the 95% critical value for 2 degrees of freedom
const chiSquaredCritical = 5.991

// SimulationReport summarizes repeated draws against an evolving pool
type SimulationReport struct {
	Trials        int
	Skipped       int
	BandCounts    map[models.Band]int
	ChiSquared    float64
	PlayerNet     int64
	FinalPool     int64
	MinPool       int64
	LargestPayout int64
}

// Simulate plays trials wagers of the given size against a pool seeded with poolSeed.
// Wagers larger than the current pool are skipped, matching the live precheck.
func Simulate(random service.RandomSource, trials int, poolSeed, wager int64) SimulationReport {
	report := SimulationReport{
		Trials:     trials,
		BandCounts: make(map[models.Band]int),
		FinalPool:  poolSeed,
		MinPool:    poolSeed,
	}

	pool := poolSeed
	for i := 0; i < trials; i++ {
		if wager > pool {
			report.Skipped++
			continue
		}

		outcome := service.Draw(random, pool, wager)
		report.BandCounts[outcome.Band]++
		report.PlayerNet += outcome.BalanceDelta
		pool += outcome.PoolDelta

		if outcome.Payout > report.LargestPayout {
			report.LargestPayout = outcome.Payout
		}
		if pool < report.MinPool {
			report.MinPool = pool
		}
	}
	report.FinalPool = pool
	report.ChiSquared = report.chiSquared()
	return report
}

// Settled returns the number of draws that were not skipped
func (r SimulationReport) Settled() int {
	return r.Trials - r.Skipped
}

func (r SimulationReport) chiSquared() float64 {
	settled := float64(r.Settled())
	if settled == 0 {
		return 0
	}
	chi := 0.0
	for band, rate := range expectedBandRates {
		expected := settled * rate
		chi += math.Pow(float64(r.BandCounts[band])-expected, 2) / expected
	}
	return chi
}

// Uniform reports whether the band counts fit the expected distribution at 95% confidence
func (r SimulationReport) Uniform() bool {
	return r.ChiSquared < chiSquaredCritical
}

// Write prints the report in a human readable form
func (r SimulationReport) Write(w io.Writer) {
	fmt.Fprintf(w, "=== Jackpot Draw Simulation ===\n")
	fmt.Fprintf(w, "Trials: %d | Settled: %d | Skipped (wager exceeds pool): %d\n\n", r.Trials, r.Settled(), r.Skipped)

	settled := float64(r.Settled())
	for _, band := range []models.Band{models.BandLoss, models.BandWin, models.BandJackpot} {
		actual := 0.0
		if settled > 0 {
			actual = float64(r.BandCounts[band]) / settled
		}
		fmt.Fprintf(w, "  %-8s %8d  actual %.4f  expected %.4f\n", band, r.BandCounts[band], actual, expectedBandRates[band])
	}

	verdict := "PASS"
	if !r.Uniform() {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "\nχ² (2 df): %.3f, critical %.3f: %s\n", r.ChiSquared, chiSquaredCritical, verdict)
	fmt.Fprintf(w, "Player net: %s | Final pool: %s | Lowest pool: %s | Largest payout: %s\n",
		service.FormatAmount(r.PlayerNet), service.FormatAmount(r.FinalPool),
		service.FormatAmount(r.MinPool), service.FormatAmount(r.LargestPayout))
}
