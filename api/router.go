package api

import (
	"context"
	"net/http"

	"jackpot/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger checks store connectivity for the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the operations exposed over HTTP
type Services struct {
	Settlement service.SettlementService
	Allowance  service.AllowanceService
	State      service.StateService
	Accounts   service.AccountService
}

// NewRouter registers every API endpoint
func NewRouter(services Services, db Pinger) http.Handler {
	h := NewHandler(services, db)
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts", h.EnsureAccount)
		r.Get("/accounts/{accountKey}", h.GetAccount)
		r.Post("/wagers", h.PlaceWager)
		r.Post("/daily", h.ClaimDailyAllowance)
		r.Get("/state", h.GetPoolState)
		r.Get("/bets/{betID}", h.GetBet)
	})

	return r
}
