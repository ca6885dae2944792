package payment

import "context"

// Repository payment ledger. Append-only: there is no update.
type Repository interface {
	Create(ctx context.Context, p *Payment) error

	// ListByBookingID oldest first.
	ListByBookingID(ctx context.Context, bookingID uint) ([]*Payment, error)
}

// RefundRepository refunds. Soft-deleted refunds are never returned.
type RefundRepository interface {
	Create(ctx context.Context, r *Refund) error

	// LockByID reads the refund FOR UPDATE.
	LockByID(ctx context.Context, id uint) (*Refund, error)

	// Update writes status and resolution fields.
	Update(ctx context.Context, r *Refund) error

	ListByBookingID(ctx context.Context, bookingID uint) ([]*Refund, error)
}
