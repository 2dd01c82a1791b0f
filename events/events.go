package events

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"yieldvault/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeInvestmentSettled   EventType = "investment_settled"
	EventTypeLedgerEntryRecorded EventType = "ledger_entry_recorded"
	EventTypeVipTierChanged      EventType = "vip_tier_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// InvestmentSettledEvent represents a matured investment paid out to its owner
type InvestmentSettledEvent struct {
	InvestmentID int64
	OwnerID      int64
	Principal    decimal.Decimal
	Profit       decimal.Decimal
	TotalCredit  decimal.Decimal
}

func (e InvestmentSettledEvent) Type() EventType {
	return EventTypeInvestmentSettled
}

// LedgerEntryRecordedEvent represents a new wallet ledger entry
type LedgerEntryRecordedEvent struct {
	EntryID   int64
	OwnerID   int64
	Kind      models.LedgerEntryKind
	Amount    decimal.Decimal
	Status    models.LedgerEntryStatus
	Reference string
}

func (e LedgerEntryRecordedEvent) Type() EventType {
	return EventTypeLedgerEntryRecorded
}

// VipTierChangedEvent represents a recomputed VIP tier that differs from the stored one
type VipTierChangedEvent struct {
	UserID  int64
	OldTier int
	NewTier int
}

func (e VipTierChangedEvent) Type() EventType {
	return EventTypeVipTierChanged
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

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
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

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission so delivery is independent of
	// the transaction context lifecycle
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
