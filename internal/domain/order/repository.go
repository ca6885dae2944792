package order

import (
	"context"
)

// Repository order persistence. Soft-deleted orders are never returned.
// Every read loads lines, outsourced lines and fulfillment records.
type Repository interface {
	// Create inserts the order with its lines and fills the generated ids.
	Create(ctx context.Context, o *Order) error

	FindByID(ctx context.Context, id uint) (*Order, error)

	// LockByID reads the order FOR UPDATE.
	LockByID(ctx context.Context, id uint) (*Order, error)

	// FindActiveByBookingID returns ErrOrderNotFound when the booking has no order.
	FindActiveByBookingID(ctx context.Context, bookingID uint) (*Order, error)

	// Update writes status, pricing, amount paid and audit fields.
	Update(ctx context.Context, o *Order) error

	// ReplaceLines swaps the stored lines for o.Items and o.OutsourcedItems.
	ReplaceLines(ctx context.Context, o *Order) error

	// AddFulfillments appends dispatch or return records and fills their ids.
	AddFulfillments(ctx context.Context, records []Fulfillment) error
}
