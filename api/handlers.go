package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jackpot/models"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 16

// HandlerProvider exposes the jackpot services as HTTP handlers
type HandlerProvider struct {
	services Services
	db       Pinger
}

// NewHandler returns a new handler provider
func NewHandler(services Services, db Pinger) *HandlerProvider {
	return &HandlerProvider{services: services, db: db}
}

type accountRequest struct {
	AccountKey   string  `json:"accountKey"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Username     *string `json:"username"`
	LanguageCode *string `json:"languageCode"`
	IsPremium    bool    `json:"isPremium"`
}

type accountResponse struct {
	ID             int64      `json:"id"`
	AccountKey     string     `json:"accountKey"`
	FirstName      *string    `json:"firstName,omitempty"`
	Username       *string    `json:"username,omitempty"`
	Balance        int64      `json:"balance"`
	LastDailyClaim *time.Time `json:"lastDailyClaim,omitempty"`
	BetCount       *int64     `json:"betCount,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type wagerRequest struct {
	AccountKey string          `json:"accountKey"`
	BetAmount  json.RawMessage `json:"betAmount"`
}

type dailyRequest struct {
	AccountKey string `json:"accountKey"`
}

type betResponse struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"accountId"`
	Amount    int64     `json:"amount"`
	Roll      int       `json:"roll"`
	IsWin     bool      `json:"isWin"`
	IsJackpot bool      `json:"isJackpot"`
	Payout    int64     `json:"payout"`
	NetChange int64     `json:"netChange"`
	CreatedAt time.Time `json:"createdAt"`
}

func newAccountResponse(account *models.Account) accountResponse {
	return accountResponse{
		ID:             account.ID,
		AccountKey:     account.AccountKey,
		FirstName:      account.FirstName,
		Username:       account.Username,
		Balance:        account.Balance,
		LastDailyClaim: account.LastDailyClaim,
		CreatedAt:      account.CreatedAt,
	}
}

// decodeBody reads a single JSON object from the request body
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

// parseWholeNumber accepts a JSON number with an integral value that fits in int64.
// Strings, booleans and fractional values are rejected; 10.0 and 1e2 are accepted.
func parseWholeNumber(raw json.RawMessage) (int64, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || (text[0] != '-' && (text[0] < '0' || text[0] > '9')) {
		return 0, errors.New("not a JSON number")
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}

	f, _, err := big.ParseFloat(text, 10, 256, big.ToNearestEven)
	if err != nil || !f.IsInt() {
		return 0, errors.New("not a whole number")
	}
	n, accuracy := f.Int64()
	if accuracy != big.Exact {
		return 0, errors.New("out of range")
	}
	return n, nil
}

// Health handles GET /healthz
func (h *HandlerProvider) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EnsureAccount handles POST /api/accounts
func (h *HandlerProvider) EnsureAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeInvalidInput(w, r, err.Error())
		return
	}

	account, err := h.services.Accounts.EnsureAccount(r.Context(), models.AccountProfile{
		AccountKey:   req.AccountKey,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		LanguageCode: req.LanguageCode,
		IsPremium:    req.IsPremium,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// GetAccount handles GET /api/accounts/{accountKey}
func (h *HandlerProvider) GetAccount(w http.ResponseWriter, r *http.Request) {
	summary, err := h.services.Accounts.GetAccount(r.Context(), chi.URLParam(r, "accountKey"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := newAccountResponse(summary.Account)
	resp.BetCount = &summary.BetCount
	writeJSON(w, http.StatusOK, resp)
}

// PlaceWager handles POST /api/wagers
func (h *HandlerProvider) PlaceWager(w http.ResponseWriter, r *http.Request) {
	var req wagerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeInvalidInput(w, r, err.Error())
		return
	}

	amount, err := parseWholeNumber(req.BetAmount)
	if err != nil {
		writeInvalidInput(w, r, "betAmount must be a whole number")
		return
	}

	result, err := h.services.Settlement.PlaceWager(r.Context(), req.AccountKey, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ClaimDailyAllowance handles POST /api/daily
func (h *HandlerProvider) ClaimDailyAllowance(w http.ResponseWriter, r *http.Request) {
	var req dailyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeInvalidInput(w, r, err.Error())
		return
	}

	result, err := h.services.Allowance.ClaimDailyAllowance(r.Context(), req.AccountKey)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetPoolState handles GET /api/state
func (h *HandlerProvider) GetPoolState(w http.ResponseWriter, r *http.Request) {
	state, err := h.services.State.GetPoolState(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// GetBet handles GET /api/bets/{betID}
func (h *HandlerProvider) GetBet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "betID"), 10, 64)
	if err != nil {
		writeInvalidInput(w, r, "bet id must be a whole number")
		return
	}

	bet, err := h.services.State.GetBet(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, betResponse{
		ID:        bet.ID,
		AccountID: bet.AccountID,
		Amount:    bet.Amount,
		Roll:      bet.Roll,
		IsWin:     bet.IsWin,
		IsJackpot: bet.IsJackpot(),
		Payout:    bet.Payout,
		NetChange: bet.NetChange(),
		CreatedAt: bet.CreatedAt,
	})
}
