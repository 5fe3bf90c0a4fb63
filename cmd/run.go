package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"jackpot/api"
	"jackpot/config"
	"jackpot/database"
	"jackpot/events"
	"jackpot/infrastructure"
	"jackpot/infrastructure/observability"
	"jackpot/repository"
	"jackpot/service"

	"github.com/redis/go-redis/v9"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting jackpot service...")

	cfg := config.Get()
	ConfigureLogging(cfg)

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	eventBus.SubscribeAll(metrics.HandleEvent)

	var publisher events.Publisher = eventBus
	if cfg.NATSEnabled {
		log.Println("Connecting to NATS...")
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := natsClient.Connect(connectCtx)
		cancel()
		if err != nil {
			return err
		}
		defer natsClient.Close()

		mapper := infrastructure.NewEventSubjectMapper()
		if err := natsClient.EnsureEventStream(mapper.GetAllSubjects()); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		publisher = infrastructure.NewNATSEventPublisher(natsClient, mapper, eventBus, metrics)
		log.Println("NATS event publishing enabled")
	}

	// Initialize pool state cache
	var stateCache service.StateCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache := infrastructure.NewRedisStateCache(rdb, cfg.StateCacheTTL)
		eventBus.Subscribe(events.EventTypeWagerSettled, cache.HandleWagerSettled)
		stateCache = cache
		log.Printf("Pool state cache enabled at %s", cfg.RedisAddr)
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, publisher)
	random := service.NewRandomSource()

	// Initialize services
	var settlementService service.SettlementService
	switch cfg.SettlementMode {
	case config.SettlementModeCompensating:
		settlementService = service.NewCompensatingSettlementService(service.Repositories{
			Accounts: repository.NewAccountRepository(db),
			Pools:    repository.NewPoolRepository(db),
			Bets:     repository.NewBetRepository(db),
		}, publisher, random, metrics)
	default:
		settlementService = service.NewSettlementService(uowFactory, random, metrics)
	}
	log.Printf("Settlement mode: %s", cfg.SettlementMode)

	router := api.NewRouter(api.Services{
		Settlement: settlementService,
		Allowance:  service.NewAllowanceService(uowFactory, service.NewSystemClock()),
		State:      service.NewStateService(uowFactory, stateCache),
		Accounts:   service.NewAccountService(uowFactory),
	}, db)
	server := api.NewServer(cfg.HTTPAddr, router)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s (%s mode)", cfg.HTTPAddr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Println("Shutting down jackpot service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics: %v", err)
	}

	log.Println("Shutdown completed")
	return nil
}
