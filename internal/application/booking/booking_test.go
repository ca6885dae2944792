package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/infrastructure/persistence/memory"
)

func TestBookingLifecycle(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewBookingRepository(store)
	logger := zaptest.NewLogger(t)
	create := NewCreateBookingUseCase(repo, logger)
	cancel := NewCancelBookingUseCase(repo, memory.NewTxManager(store), logger)
	get := NewGetBookingUseCase(repo)
	ctx := context.Background()

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	view, err := create.Execute(ctx, CreateBookingRequest{
		CustomerID: 4,
		StartAt:    start,
		EndAt:      start.Add(48 * time.Hour),
		Items: []ItemInput{
			{ProductID: 1, Quantity: 2, UnitPrice: 50, TotalPrice: 100},
			{ProductID: 1, Quantity: 1, UnitPrice: 50, TotalPrice: 50},
		},
		TotalAmount: 150,
		Actor:       8,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^BK\d+$`, view.BookingNo)
	assert.Equal(t, "pending", view.Status)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, int64(150), view.Balance)
	assert.Equal(t, "2026-05-01 09:00:00", view.StartAt)

	got, err := get.Execute(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.BookingNo, got.BookingNo)

	cancelled, err := cancel.Execute(ctx, view.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = cancel.Execute(ctx, view.ID, 8)
	assert.ErrorIs(t, err, booking.ErrInvalidStatusTransition)
	_, err = get.Execute(ctx, 404)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestCreateBooking_Invalid(t *testing.T) {
	uc := NewCreateBookingUseCase(memory.NewBookingRepository(memory.NewStore()), zaptest.NewLogger(t))
	start := time.Now()
	item := []ItemInput{{ProductID: 1, Quantity: 1}}

	tests := []struct {
		name string
		req  CreateBookingRequest
		want error
	}{
		{"no customer", CreateBookingRequest{StartAt: start, EndAt: start.Add(time.Hour), Items: item}, booking.ErrInvalidCustomer},
		{"end before start", CreateBookingRequest{CustomerID: 1, StartAt: start, EndAt: start.Add(-time.Hour), Items: item}, booking.ErrInvalidWindow},
		{"no items", CreateBookingRequest{CustomerID: 1, StartAt: start, EndAt: start.Add(time.Hour)}, booking.ErrInvalidItems},
		{"zero quantity", CreateBookingRequest{CustomerID: 1, StartAt: start, EndAt: start.Add(time.Hour), Items: []ItemInput{{ProductID: 1}}}, booking.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
