package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeUserCreated      EventType = "user_created"
	EventTypeLevelUp          EventType = "level_up"
	EventTypeItemPurchased    EventType = "item_purchased"
	EventTypeItemUsed         EventType = "item_used"
	EventTypeWarningThreshold EventType = "warning_threshold"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID       int64
	GuildID      int64
	Reason       string
	CashChange   int64
	BankChange   int64
	NewCash      int64
	NewBank      int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user record being created
type UserCreatedEvent struct {
	UserID      int64
	GuildID     int64
	InitialCash int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// LevelUpEvent represents a user reaching a new level. Role changes from
// the level reward ride on this event so the host adapter can apply them
// outside the transaction.
type LevelUpEvent struct {
	UserID      int64
	GuildID     int64
	OldLevel    int64
	NewLevel    int64
	RolesAdd    []int64
	RolesRemove []int64
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// ItemPurchasedEvent represents a completed shop purchase. Role grants and
// revocations configured on the item are applied by the host adapter.
type ItemPurchasedEvent struct {
	UserID       int64
	GuildID      int64
	ItemName     string
	Quantity     int64
	TotalPrice   int64
	RolesGranted []int64
	RolesRevoked []int64
}

func (e ItemPurchasedEvent) Type() EventType {
	return EventTypeItemPurchased
}

// ItemUsedEvent represents an item consumed from an inventory
type ItemUsedEvent struct {
	UserID   int64
	GuildID  int64
	ItemName string
}

func (e ItemUsedEvent) Type() EventType {
	return EventTypeItemUsed
}

// WarningThresholdEvent fires when a warning pushes a user to or past the
// configured maximum
type WarningThresholdEvent struct {
	UserID  int64
	GuildID int64
	Count   int
}

func (e WarningThresholdEvent) Type() EventType {
	return EventTypeWarningThreshold
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

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
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

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after a successful commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	// Use a background context so event delivery outlives the transaction
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events. Called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
