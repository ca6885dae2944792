package memory

import (
	"context"

	"github.com/xiebiao/rental/internal/domain/booking"
)

type bookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) booking.Repository {
	return &bookingRepository{store: store}
}

func (r *bookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	return r.store.run(ctx, func(st *state) error {
		b.ID = st.nextID("bookings")
		for i := range b.Items {
			b.Items[i].ID = st.nextID("booking_items")
			b.Items[i].BookingID = b.ID
		}
		st.bookings[b.ID] = copyBooking(b)
		return nil
	})
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*booking.Booking, error) {
	var found *booking.Booking
	err := r.store.run(ctx, func(st *state) error {
		b, ok := st.bookings[id]
		if !ok || b.DeletedAt != nil {
			return booking.ErrBookingNotFound
		}
		found = copyBooking(b)
		return nil
	})
	return found, err
}

func (r *bookingRepository) LockByID(ctx context.Context, id uint) (*booking.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *bookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	return r.store.run(ctx, func(st *state) error {
		current, ok := st.bookings[b.ID]
		if !ok || current.DeletedAt != nil {
			return booking.ErrBookingNotFound
		}
		next := copyBooking(current)
		next.Status = b.Status
		next.AmountPaid = b.AmountPaid
		next.TotalAmount = b.TotalAmount
		next.UpdatedBy = b.UpdatedBy
		next.UpdatedAt = b.UpdatedAt
		st.bookings[b.ID] = next
		return nil
	})
}
