package service

import (
	"context"

	"jackpot/config"
	"jackpot/events"
	"jackpot/models"

	log "github.com/sirupsen/logrus"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{
		uowFactory: uowFactory,
	}
}

func (s *accountService) EnsureAccount(ctx context.Context, profile models.AccountProfile) (*models.Account, error) {
	if profile.AccountKey == "" {
		return nil, invalidInput("account key is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storeError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, created, err := uow.AccountRepository().Create(ctx, profile, config.Get().StartingBalance)
	if err != nil {
		return nil, storeError("create account", err)
	}

	if created {
		if err := uow.EventBus().Publish(events.AccountCreatedEvent{
			AccountID:      account.ID,
			AccountKey:     account.AccountKey,
			InitialBalance: account.Balance,
		}); err != nil {
			log.WithError(err).Error("Failed to publish account created event")
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, storeError("commit transaction", err)
	}

	if created {
		log.WithField("accountKey", account.AccountKey).Info("Created account")
	}

	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountKey string) (*models.AccountSummary, error) {
	if accountKey == "" {
		return nil, invalidInput("account key is required")
	}

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

	count, err := uow.BetRepository().CountByAccount(ctx, account.ID)
	if err != nil {
		return nil, storeError("count bets", err)
	}

	return &models.AccountSummary{Account: account, BetCount: count}, nil
}
