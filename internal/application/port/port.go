// Package port declares what the use cases need from infrastructure.
package port

import (
	"context"
	"time"
)

// TxManager runs fn in one atomic unit of work.
// Repositories called with the ctx passed to fn join the transaction;
// fn returning an error rolls every write back.
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Event types published after commit.
const (
	EventInventoryAdded = "inventory.added"
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderDelivered = "order.delivered"
	EventOrderReturned  = "order.returned"
	EventRefundCreated  = "refund.created"
	EventRefundResolved = "refund.resolved"
)

// Event a notification about a committed change.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// NewEvent stamps the event with the current time.
func NewEvent(eventType string, payload interface{}) Event {
	return Event{Type: eventType, OccurredAt: time.Now(), Payload: payload}
}

// Notifier fire-and-forget sink. Implementations log their own failures;
// a notification never fails the operation that produced it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// OrderCache read cache of serialized order views.
// GetOrder returns "" without error on a miss.
type OrderCache interface {
	GetOrder(ctx context.Context, orderID uint) (string, error)
	SetOrder(ctx context.Context, orderID uint, data string, ttl time.Duration) error
	DeleteOrder(ctx context.Context, orderID uint) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}

// NopOrderCache never hits.
type NopOrderCache struct{}

func (NopOrderCache) GetOrder(context.Context, uint) (string, error) { return "", nil }

func (NopOrderCache) SetOrder(context.Context, uint, string, time.Duration) error { return nil }

func (NopOrderCache) DeleteOrder(context.Context, uint) error { return nil }
