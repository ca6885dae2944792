package order

import (
	"time"
)

// Status order status, derived from dispatch and return progress.
//
//	Created -> Initiated -> Delivered -> InReturn -> Returned
//
// Transitions only move forward; a single batch may skip a step
// (dispatching everything at once goes Created -> Delivered).
type Status int

const (
	StatusCreated   Status = 1
	StatusInitiated Status = 2 // partially dispatched
	StatusDelivered Status = 3 // every line fully dispatched
	StatusInReturn  Status = 4 // partially returned
	StatusReturned  Status = 5 // every line fully returned
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusInitiated:
		return "initiated"
	case StatusDelivered:
		return "delivered"
	case StatusInReturn:
		return "inreturn"
	case StatusReturned:
		return "returned"
	default:
		return "unknown"
	}
}

var transitions = map[Status][]Status{
	StatusCreated:   {StatusInitiated, StatusDelivered},
	StatusInitiated: {StatusDelivered},
	StatusDelivered: {StatusInReturn, StatusReturned},
	StatusInReturn:  {StatusReturned},
	StatusReturned:  {},
}

// Order fulfillment order of one booking (aggregate root).
// Amounts are minor units. Dispatches and Returns are append-only.
// Per line: dispatched <= ordered and returned <= dispatched.
type Order struct {
	ID              uint
	OrderNo         string
	BookingID       uint
	Items           []Item
	OutsourcedItems []OutsourcedItem
	Dispatches      []Fulfillment
	Returns         []Fulfillment
	Status          Status
	SubTotal        int64
	Discount        int64
	Tax             int64
	TotalAmount     int64
	AmountPaid      int64
	CreatedBy       uint
	UpdatedBy       uint
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item an owned product line; its quantity is reserved in inventory.
type Item struct {
	ID         uint
	OrderID    uint
	ProductID  uint
	Quantity   int
	UnitPrice  int64
	TotalPrice int64
}

// OutsourcedItem a line sourced from a supplier; no inventory is held for it.
type OutsourcedItem struct {
	ID                  uint
	OrderID             uint
	OutsourcedProductID uint
	Quantity            int
	UnitPrice           int64
	TotalPrice          int64
}

// Pricing totals supplied by the caller.
type Pricing struct {
	SubTotal    int64
	Discount    int64
	Tax         int64
	TotalAmount int64
}

func (p Pricing) validate() error {
	if p.SubTotal < 0 || p.Discount < 0 || p.Tax < 0 || p.TotalAmount < 0 {
		return ErrInvalidPricing
	}
	return nil
}

// NewOrder builds a Created order from already merged lines.
// amountPaid is carried over from the booking.
func NewOrder(orderNo string, bookingID uint, items []Item, outsourced []OutsourcedItem, pricing Pricing, amountPaid int64, actor uint) (*Order, error) {
	if bookingID == 0 {
		return nil, ErrInvalidBooking
	}
	if err := ValidateLines(items, outsourced); err != nil {
		return nil, err
	}
	if err := pricing.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Order{
		OrderNo:         orderNo,
		BookingID:       bookingID,
		Items:           items,
		OutsourcedItems: outsourced,
		Status:          StatusCreated,
		SubTotal:        pricing.SubTotal,
		Discount:        pricing.Discount,
		Tax:             pricing.Tax,
		TotalAmount:     pricing.TotalAmount,
		AmountPaid:      amountPaid,
		CreatedBy:       actor,
		UpdatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ValidateLines requires at least one line and positive quantities.
func ValidateLines(items []Item, outsourced []OutsourcedItem) error {
	if len(items) == 0 && len(outsourced) == 0 {
		return ErrInvalidOrderItems
	}
	for _, it := range items {
		if it.ProductID == 0 {
			return ErrInvalidOrderItems.Withf("product id is required")
		}
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if it.UnitPrice < 0 || it.TotalPrice < 0 {
			return ErrInvalidPricing
		}
	}
	for _, it := range outsourced {
		if it.OutsourcedProductID == 0 {
			return ErrInvalidOrderItems.Withf("outsourced product id is required")
		}
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if it.UnitPrice < 0 || it.TotalPrice < 0 {
			return ErrInvalidPricing
		}
	}
	return nil
}

// MergeItems sums quantity and total price of lines sharing a product,
// keeping first-seen order and the first unit price.
func MergeItems(items []Item) []Item {
	merged := make([]Item, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			merged[i].TotalPrice += it.TotalPrice
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

// MergeOutsourcedItems same as MergeItems keyed by outsourced product.
func MergeOutsourcedItems(items []OutsourcedItem) []OutsourcedItem {
	merged := make([]OutsourcedItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, it := range items {
		if i, ok := index[it.OutsourcedProductID]; ok {
			merged[i].Quantity += it.Quantity
			merged[i].TotalPrice += it.TotalPrice
			continue
		}
		index[it.OutsourcedProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

// IsActive reports an order that is not soft-deleted.
func (o *Order) IsActive() bool {
	return o.DeletedAt == nil
}

func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo moves to target. Staying in the same status is a no-op.
func (o *Order) TransitionTo(target Status) error {
	if o.Status == target {
		return nil
	}
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.Withf("%s -> %s", o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// HasReturns reports whether any return was recorded.
func (o *Order) HasReturns() bool {
	return len(o.Returns) > 0
}

// Balance what is still owed on the order.
func (o *Order) Balance() int64 {
	return o.TotalAmount - o.AmountPaid
}

// IsFullyPaid reports a non-zero total that is completely paid.
func (o *Order) IsFullyPaid() bool {
	return o.TotalAmount > 0 && o.AmountPaid == o.TotalAmount
}

// RecordPayment applies a credit and the revised total.
func (o *Order) RecordPayment(amount, newTotal int64, actor uint) {
	o.AmountPaid += amount
	o.TotalAmount = newTotal
	o.touch(actor)
}

// SettleOverpayment lowers the order to a revised total below what was already
// paid. It returns the excess owed back; paid and total both become newTotal.
func (o *Order) SettleOverpayment(newTotal int64, actor uint) int64 {
	excess := o.AmountPaid - newTotal
	if excess <= 0 {
		return 0
	}
	o.AmountPaid = newTotal
	o.TotalAmount = newTotal
	o.touch(actor)
	return excess
}

// ProductQuantities ordered quantity per owned product.
func (o *Order) ProductQuantities() map[uint]int {
	return productQuantities(o.Items)
}

func productQuantities(items []Item) map[uint]int {
	q := make(map[uint]int, len(items))
	for _, it := range items {
		q[it.ProductID] += it.Quantity
	}
	return q
}

func (o *Order) touch(actor uint) {
	o.UpdatedBy = actor
	o.UpdatedAt = time.Now()
}
