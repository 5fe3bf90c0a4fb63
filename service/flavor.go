package service

import (
	"fmt"
	"strconv"

	"jackpot/models"
)

var winPhrases = []string{
	"Probability matrix aligned.",
	"Fortune favors the bold.",
	"Investment strategy: Successful.",
	"Algorithm approves this outcome.",
	"Neural network predicts more wins.",
	"Quantum fluctuation in your favor.",
}

var lossPhrases = []string{
	"Variance happens.",
	"The house sends its regards.",
	"System analysis: Unfortunate.",
	"Don't give up, human.",
	"Entropy increased.",
	"Risk assessment: Recalibrate.",
	"Statistical correction applied.",
}

// GenerateFlavor builds the cosmetic descriptor for a settled wager.
// amount is the balance gain for wins and the wager for losses.
func GenerateFlavor(source RandomSource, roll int, isWin bool, amount int64) models.Flavor {
	if roll == models.JackpotRoll {
		return models.Flavor{
			Style:       models.FlavorStyleJackpot,
			Title:       "CRITICAL HIT DETECTED",
			Description: fmt.Sprintf("System Overload! The vault has been breached. You secured $%s.", FormatAmount(amount)),
			Emoji:       "🎰",
			BorderColor: "border-amber-400",
			TextColor:   "text-amber-300",
			BgColor:     "bg-amber-900/40",
		}
	}

	if isWin {
		phrase := winPhrases[source.Intn(len(winPhrases))]
		return models.Flavor{
			Style:       models.FlavorStyleSuccess,
			Title:       "WIN REGISTERED",
			Description: fmt.Sprintf("%s Account credited +$%s.", phrase, FormatAmount(amount)),
			Emoji:       "🟢",
			BorderColor: "border-green-500/50",
			TextColor:   "text-green-400",
			BgColor:     "bg-green-900/30",
		}
	}

	phrase := lossPhrases[source.Intn(len(lossPhrases))]
	return models.Flavor{
		Style:       models.FlavorStyleError,
		Title:       "LOSS CALCULATED",
		Description: fmt.Sprintf("%s Vault absorbs $%s.", phrase, FormatAmount(amount)),
		Emoji:       "🔴",
		BorderColor: "border-red-500/50",
		TextColor:   "text-red-400",
		BgColor:     "bg-red-900/30",
	}
}

// FormatAmount renders an integer with comma thousands separators
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var out []byte
	lead := len(digits) % 3
	if lead > 0 {
		out = append(out, digits[:lead]...)
	}
	for i := lead; i < len(digits); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i:i+3]...)
	}
	return sign + string(out)
}
