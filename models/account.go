package models

import (
	"time"
)

// Account is a player's wallet keyed by the identity provider's stable user key
type Account struct {
	ID             int64      `db:"id"`
	AccountKey     string     `db:"account_key"`
	FirstName      *string    `db:"first_name"`
	LastName       *string    `db:"last_name"`
	Username       *string    `db:"username"`
	LanguageCode   *string    `db:"language_code"`
	IsPremium      bool       `db:"is_premium"`
	Balance        int64      `db:"balance"`
	LastDailyClaim *time.Time `db:"last_daily_claim"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// AccountProfile carries the verified identity fields used to create an account
type AccountProfile struct {
	AccountKey   string
	FirstName    *string
	LastName     *string
	Username     *string
	LanguageCode *string
	IsPremium    bool
}

// CanAfford checks if the account balance covers an amount
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// DisplayName returns the first name, or fallback when the account has none
func (a *Account) DisplayName(fallback string) string {
	if a == nil || a.FirstName == nil || *a.FirstName == "" {
		return fallback
	}
	return *a.FirstName
}

// NextDailyClaimAt returns when the next allowance may be claimed.
// A zero time means the allowance is claimable now.
func (a *Account) NextDailyClaimAt(cooldown time.Duration) time.Time {
	if a.LastDailyClaim == nil {
		return time.Time{}
	}
	return a.LastDailyClaim.Add(cooldown)
}

// AccountSummary is an account together with its ledger size
type AccountSummary struct {
	Account  *Account
	BetCount int64
}
