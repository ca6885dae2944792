package order

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moment = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func newTestOrder(t *testing.T, items ...Item) *Order {
	t.Helper()
	o, err := NewOrder("ORD1", 1, items, nil, Pricing{TotalAmount: 1000}, 0, 1)
	require.NoError(t, err)
	o.ID = 10
	return o
}

func dispatch(productID uint, qty int) Fulfillment {
	return Fulfillment{ProductID: productID, Quantity: qty, At: moment}
}

func TestMergeItems(t *testing.T) {
	merged := MergeItems([]Item{
		{ProductID: 1, Quantity: 2, UnitPrice: 10, TotalPrice: 20},
		{ProductID: 2, Quantity: 1, UnitPrice: 5, TotalPrice: 5},
		{ProductID: 1, Quantity: 3, UnitPrice: 10, TotalPrice: 30},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, Item{ProductID: 1, Quantity: 5, UnitPrice: 10, TotalPrice: 50}, merged[0])
	assert.Equal(t, uint(2), merged[1].ProductID)

	out := MergeOutsourcedItems([]OutsourcedItem{
		{OutsourcedProductID: 4, Quantity: 1, TotalPrice: 7},
		{OutsourcedProductID: 4, Quantity: 2, TotalPrice: 14},
	})
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Quantity)
	assert.Equal(t, int64(21), out[0].TotalPrice)
}

func TestNewOrder_Invalid(t *testing.T) {
	_, err := NewOrder("ORD", 0, []Item{{ProductID: 1, Quantity: 1}}, nil, Pricing{}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidBooking)

	_, err = NewOrder("ORD", 1, nil, nil, Pricing{}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidOrderItems)

	_, err = NewOrder("ORD", 1, []Item{{ProductID: 1}}, nil, Pricing{}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrder("ORD", 1, []Item{{ProductID: 1, Quantity: 1}}, nil, Pricing{Tax: -1}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidPricing)

	_, err = NewOrder("ORD", 1, nil, []OutsourcedItem{{Quantity: 1}}, Pricing{}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidOrderItems)
}

func TestNewOrder_CarriesAmountPaid(t *testing.T) {
	o, err := NewOrder("ORD", 3, []Item{{ProductID: 1, Quantity: 1}}, nil, Pricing{TotalAmount: 1000}, 400, 7)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, o.Status)
	assert.Equal(t, int64(400), o.AmountPaid)
	assert.Equal(t, int64(600), o.Balance())
	assert.False(t, o.IsFullyPaid())
}

func TestRecordDispatches_PartialThenFull(t *testing.T) {
	o := newTestOrder(t, Item{ProductID: 1, Quantity: 10})

	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 4)}, 5))
	assert.Equal(t, StatusInitiated, o.Status)
	assert.Equal(t, 4, o.Dispatched(LineRef{ID: 1}))
	assert.Equal(t, RecordDispatched, o.Dispatches[0].Status)
	assert.Equal(t, KindDispatch, o.Dispatches[0].Kind)
	assert.Equal(t, uint(5), o.Dispatches[0].Actor)
	assert.Equal(t, uint(10), o.Dispatches[0].OrderID)

	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 6)}, 5))
	assert.Equal(t, StatusDelivered, o.Status)

	err := o.RecordDispatches([]Fulfillment{dispatch(1, 1)}, 5)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestRecordDispatches_RejectsWholeBatch(t *testing.T) {
	o := newTestOrder(t, Item{ProductID: 1, Quantity: 3}, Item{ProductID: 2, Quantity: 3})

	tests := []struct {
		name  string
		batch []Fulfillment
	}{
		{"empty", nil},
		{"no reference", []Fulfillment{{Quantity: 1, At: moment}}},
		{"both references", []Fulfillment{{ProductID: 1, OutsourcedProductID: 2, Quantity: 1, At: moment}}},
		{"zero quantity", []Fulfillment{dispatch(1, 0)}},
		{"no date", []Fulfillment{{ProductID: 1, Quantity: 1}}},
		{"not on order", []Fulfillment{dispatch(1, 1), dispatch(9, 1)}},
		{"over dispatch across batch", []Fulfillment{dispatch(2, 2), dispatch(2, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := o.RecordDispatches(tt.batch, 1)
			assert.ErrorIs(t, err, ErrInvalidDispatchItem)
			assert.Empty(t, o.Dispatches)
			assert.Equal(t, StatusCreated, o.Status)
		})
	}
}

func TestRecordDispatches_Outsourced(t *testing.T) {
	o, err := NewOrder("ORD", 1, []Item{{ProductID: 1, Quantity: 1}},
		[]OutsourcedItem{{OutsourcedProductID: 5, Quantity: 2}}, Pricing{}, 0, 1)
	require.NoError(t, err)

	require.NoError(t, o.RecordDispatches([]Fulfillment{
		dispatch(1, 1),
		{OutsourcedProductID: 5, Quantity: 1, At: moment},
	}, 1))
	assert.Equal(t, StatusInitiated, o.Status)

	require.NoError(t, o.RecordDispatches([]Fulfillment{{OutsourcedProductID: 5, Quantity: 1, At: moment}}, 1))
	assert.Equal(t, StatusDelivered, o.Status)
}

func TestRecordReturns(t *testing.T) {
	o, err := NewOrder("ORD", 1, []Item{{ProductID: 1, Quantity: 4}},
		[]OutsourcedItem{{OutsourcedProductID: 5, Quantity: 1}}, Pricing{}, 0, 1)
	require.NoError(t, err)

	_, err = o.RecordReturns([]Fulfillment{dispatch(1, 1)}, 1)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition, "nothing dispatched yet")

	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 4), {OutsourcedProductID: 5, Quantity: 1, At: moment}}, 1))

	_, err = o.RecordReturns([]Fulfillment{dispatch(1, 5)}, 1)
	assert.ErrorIs(t, err, ErrInvalidReturnItem)

	release, err := o.RecordReturns([]Fulfillment{dispatch(1, 3), {OutsourcedProductID: 5, Quantity: 1, At: moment}}, 2)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{1: 3}, release, "outsourced returns release nothing")
	assert.Equal(t, StatusInReturn, o.Status)
	assert.Equal(t, RecordInReturn, o.Returns[0].Status)
	assert.Equal(t, KindReturn, o.Returns[0].Kind)

	release, err = o.RecordReturns([]Fulfillment{dispatch(1, 1)}, 2)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{1: 1}, release)
	assert.Equal(t, StatusReturned, o.Status)
}

func TestRecordReturns_RejectedUntilDelivered(t *testing.T) {
	o := newTestOrder(t, Item{ProductID: 1, Quantity: 10})
	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 4)}, 1))

	_, err := o.RecordReturns([]Fulfillment{dispatch(1, 4)}, 1)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Empty(t, o.Returns)
	assert.Equal(t, StatusInitiated, o.Status)

	// the rest still ships and the full quantity can come back
	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 6)}, 1))
	assert.Equal(t, StatusDelivered, o.Status)

	_, err = o.RecordReturns([]Fulfillment{dispatch(1, 4)}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusInReturn, o.Status)
	_, err = o.RecordReturns([]Fulfillment{dispatch(1, 6)}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, o.Status)
}

func TestReplaceLines(t *testing.T) {
	o := newTestOrder(t, Item{ProductID: 1, Quantity: 5}, Item{ProductID: 2, Quantity: 2})
	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 3)}, 1))

	delta, err := o.ReplaceLines([]Item{
		{ProductID: 1, Quantity: 3},
		{ProductID: 3, Quantity: 4},
	}, nil, Pricing{TotalAmount: 800}, 9)
	require.NoError(t, err)

	assert.Equal(t, map[uint]int{1: -2, 2: -2, 3: 4}, delta)
	assert.Equal(t, int64(800), o.TotalAmount)
	assert.Equal(t, uint(9), o.UpdatedBy)
	assert.Equal(t, uint(10), o.Items[0].OrderID)
	assert.Equal(t, StatusInitiated, o.Status, "product 3 not dispatched yet")
}

func TestReplaceLines_CompletesDispatch(t *testing.T) {
	o := newTestOrder(t, Item{ProductID: 1, Quantity: 5})
	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 3)}, 1))

	_, err := o.ReplaceLines([]Item{{ProductID: 1, Quantity: 3}}, nil, Pricing{}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, o.Status)

	_, err = o.ReplaceLines([]Item{{ProductID: 1, Quantity: 4}}, nil, Pricing{}, 1)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition, "delivered order cannot grow")
}

func TestReplaceLines_Rejected(t *testing.T) {
	o := newTestOrder(t, Item{ProductID: 1, Quantity: 5})
	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 3)}, 1))

	_, err := o.ReplaceLines([]Item{{ProductID: 1, Quantity: 2}}, nil, Pricing{}, 1)
	assert.ErrorIs(t, err, ErrBelowDispatched)

	_, err = o.ReplaceLines([]Item{{ProductID: 2, Quantity: 2}}, nil, Pricing{}, 1)
	assert.ErrorIs(t, err, ErrBelowDispatched, "dropping a dispatched line")

	require.NoError(t, o.RecordDispatches([]Fulfillment{dispatch(1, 2)}, 1))
	_, err = o.RecordReturns([]Fulfillment{dispatch(1, 1)}, 1)
	require.NoError(t, err)
	_, err = o.ReplaceLines([]Item{{ProductID: 1, Quantity: 5}}, nil, Pricing{}, 1)
	assert.ErrorIs(t, err, ErrOrderHasReturns)
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusCreated, StatusInitiated, true},
		{StatusCreated, StatusDelivered, true},
		{StatusCreated, StatusInReturn, false},
		{StatusInitiated, StatusCreated, false},
		{StatusInitiated, StatusInReturn, false},
		{StatusDelivered, StatusInitiated, false},
		{StatusDelivered, StatusReturned, true},
		{StatusReturned, StatusInReturn, false},
	}
	for _, tt := range tests {
		o := &Order{Status: tt.from}
		assert.Equal(t, tt.ok, o.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestParseMoment(t *testing.T) {
	at, err := ParseMoment("2026-03-02", "10:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, moment, at)

	at, err = ParseMoment("2026-03-02", "10:30:15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 15, at.Second())

	_, err = ParseMoment("02/03/2026", "10:30", time.UTC)
	assert.Error(t, err)
	_, err = ParseMoment("2026-03-02", "noon", time.UTC)
	assert.Error(t, err)
}

func TestGenerateOrderNo(t *testing.T) {
	no := GenerateOrderNo()
	assert.True(t, strings.HasPrefix(no, "ORD"))
	assert.Len(t, no, 3+10+6)

	at := time.Unix(1699248000, 0)
	assert.Equal(t, "ORD1699248000000042", GenerateOrderNoAt(at, 42))
	assert.Equal(t, "ORD1699248000000007", GenerateOrderNoAt(at, 1000007))
}

func TestPaymentTotals(t *testing.T) {
	o := &Order{TotalAmount: 1000, AmountPaid: 400}
	o.RecordPayment(600, 1000, 3)
	assert.True(t, o.IsFullyPaid())
	assert.Equal(t, int64(0), o.Balance())

	o = &Order{TotalAmount: 1000, AmountPaid: 1000}
	assert.Equal(t, int64(200), o.SettleOverpayment(800, 3))
	assert.Equal(t, int64(800), o.AmountPaid)
	assert.Equal(t, int64(800), o.TotalAmount)
	assert.Equal(t, int64(0), o.SettleOverpayment(900, 3))
}
