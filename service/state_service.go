package service

import (
	"context"

	"jackpot/config"
	"jackpot/models"

	log "github.com/sirupsen/logrus"
)

const (
	recentWinsLimit = 5
	anonymousPlayer = "Anonymous"
)

type stateService struct {
	uowFactory UnitOfWorkFactory
	cache      StateCache
	poolSeed   int64
}

// NewStateService creates a new state reader. cache may be nil.
func NewStateService(uowFactory UnitOfWorkFactory, cache StateCache) StateService {
	return &stateService{
		uowFactory: uowFactory,
		cache:      cache,
		poolSeed:   config.Get().PoolSeedAmount,
	}
}

func (s *stateService) GetPoolState(ctx context.Context) (*models.PoolState, error) {
	cacheWritable := false
	var generation int64
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			log.WithError(err).Warn("Failed to read pool state from cache")
		case cached != nil:
			return cached, nil
		default:
			cacheWritable, generation = true, gen
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storeError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	pool, err := uow.PoolRepository().GetOrCreate(ctx, s.poolSeed)
	if err != nil {
		return nil, storeError("get jackpot pool", err)
	}

	wins, err := uow.BetRepository().ListRecentWinning(ctx, recentWinsLimit)
	if err != nil {
		return nil, storeError("list recent wins", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storeError("commit transaction", err)
	}

	state := &models.PoolState{
		PoolAmount: pool.Amount,
		RecentWins: make([]models.RecentWin, 0, len(wins)),
	}
	for _, win := range wins {
		state.RecentWins = append(state.RecentWins, models.RecentWin{
			Player:    win.DisplayName(anonymousPlayer),
			Amount:    win.Payout,
			Roll:      win.Roll,
			IsJackpot: win.IsJackpot(),
			CreatedAt: win.CreatedAt,
		})
	}

	if cacheWritable {
		if err := s.cache.Set(ctx, generation, state); err != nil {
			log.WithError(err).Warn("Failed to write pool state to cache")
		}
	}

	return state, nil
}

func (s *stateService) GetBet(ctx context.Context, id int64) (*models.BetRecord, error) {
	if id <= 0 {
		return nil, invalidInput("bet id must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, storeError("begin transaction", err)
	}
	defer uow.Rollback() // No-op if already committed

	bet, err := uow.BetRepository().GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get bet", err)
	}
	if bet == nil {
		return nil, &Error{Kind: KindNotFound, Message: "bet not found"}
	}

	return bet, nil
}
