package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jackpot/config"
	"jackpot/events"
	"jackpot/models"

	log "github.com/sirupsen/logrus"
)

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// NewSystemClock returns a Clock backed by time.Now
func NewSystemClock() Clock {
	return systemClock{}
}

type allowanceService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
	amount     int64
	cooldown   time.Duration
}

// NewAllowanceService creates a new daily allowance service
func NewAllowanceService(uowFactory UnitOfWorkFactory, clock Clock) AllowanceService {
	cfg := config.Get()
	return &allowanceService{
		uowFactory: uowFactory,
		clock:      clock,
		amount:     cfg.DailyAllowanceAmount,
		cooldown:   cfg.DailyCooldown,
	}
}

func (s *allowanceService) ClaimDailyAllowance(ctx context.Context, accountKey string) (*models.AllowanceResult, error) {
	if accountKey == "" {
		return nil, invalidInput("account key is required")
	}

	now := s.clock.Now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storeError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := uow.AccountRepository().GetByKey(ctx, accountKey)
	if err != nil {
		return nil, storeError("get account", err)
	}
	if account == nil {
		return nil, accountNotFound(accountKey)
	}
	if err := s.checkCooldown(account, now); err != nil {
		return nil, err
	}

	updated, err := uow.AccountRepository().ClaimAllowance(ctx, accountKey, s.amount, now, s.cooldown)
	if errors.Is(err, ErrConditionFailed) {
		// Another claim committed between the read and the update
		current, readErr := uow.AccountRepository().GetByKey(ctx, accountKey)
		if readErr != nil {
			return nil, storeError("get account", readErr)
		}
		if current != nil {
			if cooldownErr := s.checkCooldown(current, now); cooldownErr != nil {
				return nil, cooldownErr
			}
		}
		return nil, cooldownActive(hoursRemaining(s.cooldown))
	}
	if err != nil {
		return nil, storeError("claim allowance", err)
	}

	if err := uow.EventBus().Publish(events.AllowanceClaimedEvent{
		AccountKey: accountKey,
		Amount:     s.amount,
		NewBalance: updated.Balance,
		ClaimedAt:  now,
	}); err != nil {
		log.WithError(err).Error("Failed to publish allowance claimed event")
	}

	if err := uow.Commit(); err != nil {
		return nil, storeError("commit transaction", err)
	}

	log.WithFields(log.Fields{
		"accountKey": accountKey,
		"amount":     s.amount,
		"newBalance": updated.Balance,
	}).Info("Daily allowance claimed")

	return &models.AllowanceResult{
		Amount:     s.amount,
		NewBalance: updated.Balance,
		ClaimedAt:  now,
		Message:    fmt.Sprintf("Claimed $%s!", FormatAmount(s.amount)),
	}, nil
}

func (s *allowanceService) checkCooldown(account *models.Account, now time.Time) error {
	next := account.NextDailyClaimAt(s.cooldown)
	if next.IsZero() || !now.Before(next) {
		return nil
	}
	return cooldownActive(hoursRemaining(next.Sub(now)))
}

// hoursRemaining rounds the remaining cooldown up to whole hours
func hoursRemaining(remaining time.Duration) int64 {
	const msPerHour = int64(time.Hour / time.Millisecond)

	ms := remaining.Milliseconds()
	hours := (ms + msPerHour - 1) / msPerHour
	if hours < 1 {
		return 1
	}
	return hours
}
