package models

// FlavorStyle is the presentation category of a wager result
type FlavorStyle string

const (
	FlavorStyleJackpot FlavorStyle = "jackpot"
	FlavorStyleSuccess FlavorStyle = "success"
	FlavorStyleError   FlavorStyle = "error"
)

// Flavor is the cosmetic descriptor returned with every wager result
type Flavor struct {
	Style       FlavorStyle `json:"style"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Emoji       string      `json:"emoji"`
	BorderColor string      `json:"borderColor"`
	TextColor   string      `json:"textColor"`
	BgColor     string      `json:"bgColor"`
}
