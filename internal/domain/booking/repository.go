package booking

import "context"

// Repository booking persistence. Soft-deleted bookings are never returned.
type Repository interface {
	Create(ctx context.Context, b *Booking) error

	FindByID(ctx context.Context, id uint) (*Booking, error)

	// LockByID reads the booking FOR UPDATE; payments and order creation
	// serialise on this row.
	LockByID(ctx context.Context, id uint) (*Booking, error)

	// Update writes status, amounts and audit fields. Items are immutable.
	Update(ctx context.Context, b *Booking) error
}
