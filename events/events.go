package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWagerSettled     EventType = "wager_settled"
	EventTypeJackpotHit       EventType = "jackpot_hit"
	EventTypeAllowanceClaimed EventType = "allowance_claimed"
	EventTypeAccountCreated   EventType = "account_created"
)

// AllEventTypes lists every event type the service emits
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeWagerSettled,
		EventTypeJackpotHit,
		EventTypeAllowanceClaimed,
		EventTypeAccountCreated,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WagerSettledEvent is emitted once per committed wager settlement
type WagerSettledEvent struct {
	AccountID    int64     `json:"accountId"`
	AccountKey   string    `json:"accountKey"`
	BetID        int64     `json:"betId"`
	Amount       int64     `json:"amount"`
	Roll         int       `json:"roll"`
	Band         string    `json:"band"`
	IsWin        bool      `json:"isWin"`
	Payout       int64     `json:"payout"`
	BalanceDelta int64     `json:"balanceDelta"`
	NewBalance   int64     `json:"newBalance"`
	PoolAmount   int64     `json:"poolAmount"`
	SettledAt    time.Time `json:"settledAt"`
}

func (e WagerSettledEvent) Type() EventType {
	return EventTypeWagerSettled
}

// JackpotHitEvent is emitted in addition to WagerSettledEvent on a roll of 100
type JackpotHitEvent struct {
	AccountKey   string `json:"accountKey"`
	BetID        int64  `json:"betId"`
	JackpotShare int64  `json:"jackpotShare"`
	Payout       int64  `json:"payout"`
	PoolAmount   int64  `json:"poolAmount"`
}

func (e JackpotHitEvent) Type() EventType {
	return EventTypeJackpotHit
}

// AllowanceClaimedEvent is emitted after a daily allowance credit commits
type AllowanceClaimedEvent struct {
	AccountKey string    `json:"accountKey"`
	Amount     int64     `json:"amount"`
	NewBalance int64     `json:"newBalance"`
	ClaimedAt  time.Time `json:"claimedAt"`
}

func (e AllowanceClaimedEvent) Type() EventType {
	return EventTypeAllowanceClaimed
}

// AccountCreatedEvent is emitted when an account row is first inserted
type AccountCreatedEvent struct {
	AccountID      int64  `json:"accountId"`
	AccountKey     string `json:"accountKey"`
	InitialBalance int64  `json:"initialBalance"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes() {
		b.Subscribe(eventType, handler)
	}
}

// Emit dispatches an event to all registered handlers.
// Handlers run asynchronously; a panicking handler is logged and isolated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits the event to local handlers immediately
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Publisher delivers events to subscribers, in-process or over a broker
type Publisher interface {
	Publish(event Event) error
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits.
type TransactionalBus struct {
	real    Publisher
	pending []Event
}

// NewTransactionalBus wraps the publisher that receives events on Flush
func NewTransactionalBus(real Publisher) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes the event until Flush
func (b *TransactionalBus) Publish(e Event) error {
	b.pending = append(b.pending, e)
	return nil
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush hands pending events to the real publisher; called after a successful commit.
// A failed publish is logged and does not stop the remaining events.
func (b *TransactionalBus) Flush() {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	for _, ev := range b.pending {
		if err := b.real.Publish(ev); err != nil {
			log.WithFields(log.Fields{
				"eventType": ev.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	b.pending = nil
}

// Discard drops pending events; called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
