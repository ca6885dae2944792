package fulfillment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/internal/domain/order"
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

func TestCreateOrder_MergesDuplicateLines(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 1, 10)
	b := f.booking(t, 300)

	view, err := f.create.Execute(context.Background(), CreateOrderRequest{
		BookingID: b.ID,
		Items: []LineInput{
			{ProductID: 1, Quantity: 2, UnitPrice: 100, TotalPrice: 200},
			{ProductID: 1, Quantity: 3, UnitPrice: 100, TotalPrice: 300},
		},
		OutsourcedItems: []OutsourcedLineInput{{OutsourcedProductID: 50, Quantity: 1, UnitPrice: 40, TotalPrice: 40}},
		Pricing:         PricingInput{SubTotal: 540, TotalAmount: 540},
		Actor:           actor,
	})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, int64(500), view.Items[0].TotalPrice)
	assert.Len(t, view.OutsourcedItems, 1)
	assert.Equal(t, "created", view.Status)
	assert.Equal(t, int64(300), view.AmountPaid, "carried over from the booking")

	inv := f.inventory(t, 1)
	assert.Equal(t, 5, inv.Reserved)
	assert.Equal(t, 5, inv.Available)

	stored, err := f.bookings.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusSuccess, stored.Status)

	logs, err := f.logs.ListByOrderID(context.Background(), view.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, inventory.ChangeTypeReserve, logs[0].ChangeType)
	assert.Equal(t, -5, logs[0].Quantity)

	assert.Equal(t, []string{port.EventOrderCreated}, f.notifier.types())
	assert.Contains(t, f.cache.data, view.ID, "cache warmed")
}

func TestCreateOrder_ShortfallReservesNothing(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 1, 10)
	f.stock(t, 2, 1)
	f.stock(t, 3, 4)
	b := f.booking(t, 0)

	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		BookingID: b.ID,
		Items: []LineInput{
			{ProductID: 1, Quantity: 5},
			{ProductID: 2, Quantity: 3},
			{ProductID: 3, Quantity: 6},
		},
		Actor: actor,
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, []inventory.Shortfall{
		{ProductID: 2, Requested: 3, Available: 1},
		{ProductID: 3, Requested: 6, Available: 4},
	}, apperrors.GetAppError(err).Data)

	assert.Equal(t, 10, f.inventory(t, 1).Available)
	assert.Equal(t, 0, f.inventory(t, 1).Reserved)
	_, err = f.orders.FindActiveByBookingID(context.Background(), b.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	stored, err := f.bookings.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, stored.Status)
	assert.Empty(t, f.notifier.types())
}

func TestCreateOrder_Rejections(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 1, 10)

	cancelled := f.booking(t, 0)
	require.NoError(t, cancelled.Cancel(actor))
	require.NoError(t, f.bookings.Update(context.Background(), cancelled))

	converted := f.booking(t, 0)
	_, err := f.create.Execute(context.Background(), CreateOrderRequest{
		BookingID: converted.ID, Items: []LineInput{{ProductID: 1, Quantity: 1}}, Actor: actor,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  CreateOrderRequest
		want error
	}{
		{"missing booking", CreateOrderRequest{BookingID: 999, Items: []LineInput{{ProductID: 1, Quantity: 1}}}, booking.ErrBookingNotFound},
		{"cancelled booking", CreateOrderRequest{BookingID: cancelled.ID, Items: []LineInput{{ProductID: 1, Quantity: 1}}}, booking.ErrBookingNotFound},
		{"second order", CreateOrderRequest{BookingID: converted.ID, Items: []LineInput{{ProductID: 1, Quantity: 1}}}, order.ErrOrderAlreadyExists},
		{"no lines", CreateOrderRequest{BookingID: converted.ID}, order.ErrInvalidOrderItems},
		{"zero quantity", CreateOrderRequest{BookingID: converted.ID, Items: []LineInput{{ProductID: 1}}}, order.ErrInvalidQuantity},
		{"unknown product", CreateOrderRequest{BookingID: f.booking(t, 0).ID, Items: []LineInput{{ProductID: 77, Quantity: 1}}}, inventory.ErrInventoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.create.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 1, f.inventory(t, 1).Reserved)
}

func TestCreateOrder_ConcurrentLastUnits(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 1, 5)
	first, second := f.booking(t, 0), f.booking(t, 0)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, b := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(bookingID uint) {
			defer wg.Done()
			_, err := f.create.Execute(context.Background(), CreateOrderRequest{
				BookingID: bookingID, Items: []LineInput{{ProductID: 1, Quantity: 5}}, Actor: actor,
			})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(b)
	}
	wg.Wait()

	var failures []error
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1, "exactly one reservation commits")
	assert.ErrorIs(t, failures[0], inventory.ErrInsufficientStock)
	assert.Equal(t, []inventory.Shortfall{{ProductID: 1, Requested: 5, Available: 0}}, apperrors.GetAppError(failures[0]).Data)

	inv := f.inventory(t, 1)
	assert.Equal(t, 5, inv.Reserved)
	assert.Equal(t, 0, inv.Available)
}
