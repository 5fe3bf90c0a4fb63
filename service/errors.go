package service

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies failures reported to callers
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "InvalidInput"
	KindAccountNotFound   ErrorKind = "AccountNotFound"
	KindInsufficientFunds ErrorKind = "InsufficientFunds"
	KindCooldownActive    ErrorKind = "CooldownActive"
	KindWagerExceedsPool  ErrorKind = "WagerExceedsPool"
	KindStoreUnavailable  ErrorKind = "StoreUnavailable"
	KindNotFound          ErrorKind = "NotFound"
	KindInternal          ErrorKind = "Internal"
)

// Error is the error type returned by every service operation
type Error struct {
	Kind    ErrorKind
	Message string
	// HoursRemaining is set for CooldownActive
	HoursRemaining int64
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinel errors for errors.Is checks
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrAccountNotFound   = &Error{Kind: KindAccountNotFound}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}
	ErrCooldownActive    = &Error{Kind: KindCooldownActive}
	ErrWagerExceedsPool  = &Error{Kind: KindWagerExceedsPool}
	ErrStoreUnavailable  = &Error{Kind: KindStoreUnavailable}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInternal          = &Error{Kind: KindInternal}
)

func invalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func accountNotFound(accountKey string) error {
	return &Error{Kind: KindAccountNotFound, Message: fmt.Sprintf("account %q not found", accountKey)}
}

func insufficientFunds(balance, needed int64) error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf("insufficient balance: have %d, need %d", balance, needed)}
}

func cooldownActive(hoursRemaining int64) error {
	return &Error{
		Kind:           KindCooldownActive,
		Message:        fmt.Sprintf("daily allowance already claimed, try again in %d hours", hoursRemaining),
		HoursRemaining: hoursRemaining,
	}
}

// wagerExceedsPool rejects a wager the pool could not cover on a win.
// Nothing is written; the same wager is accepted once the pool has grown.
func wagerExceedsPool(wager, pool int64) error {
	return &Error{
		Kind: KindWagerExceedsPool,
		Message: fmt.Sprintf("wager of %d exceeds the jackpot pool of %d; nothing was charged, wager at most %d or retry once the pool grows",
			wager, pool, pool),
	}
}

// storeError classifies a repository failure as StoreUnavailable or Internal
func storeError(op string, err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	if isStoreUnavailable(err) {
		return &Error{Kind: KindStoreUnavailable, Message: "ledger store unavailable", Err: fmt.Errorf("failed to %s: %w", op, err)}
	}
	return &Error{Kind: KindInternal, Message: "internal error", Err: fmt.Errorf("failed to %s: %w", op, err)}
}

func isStoreUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08": // connection exception
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03": // shutdown
			return true
		case pgErr.Code == "53300": // too_many_connections
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// isSerializationConflict reports whether the transaction lost a serialization race
func isSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
