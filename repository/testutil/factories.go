package testutil

import (
	"time"

	"jackpot/models"
)

// CreateTestProfile creates an account profile with a first name
func CreateTestProfile(accountKey, firstName string) models.AccountProfile {
	profile := models.AccountProfile{AccountKey: accountKey}
	if firstName != "" {
		profile.FirstName = &firstName
	}
	return profile
}

// CreateTestAccount creates an in-memory account with the given balance
func CreateTestAccount(accountKey string, balance int64) *models.Account {
	now := time.Now()
	return &models.Account{
		AccountKey: accountKey,
		Balance:    balance,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreateTestBet creates a bet record for the account with outcome fields derived from the roll
func CreateTestBet(accountID, amount int64, roll int, poolAmount int64) *models.BetRecord {
	bet := &models.BetRecord{
		AccountID: accountID,
		Amount:    amount,
		Roll:      roll,
	}
	switch {
	case roll == models.JackpotRoll:
		bet.IsWin = true
		bet.Payout = poolAmount/2 + amount
	case roll > 50:
		bet.IsWin = true
		bet.Payout = amount * 2
	}
	return bet
}
