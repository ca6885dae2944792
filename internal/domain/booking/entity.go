package booking

import (
	"time"
)

// Status booking status.
// Pending -> Success when its order is committed; Pending -> Cancelled by the customer.
type Status int

const (
	StatusPending   Status = 1
	StatusSuccess   Status = 2
	StatusCancelled Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusSuccess, StatusCancelled},
	StatusSuccess:   {},
	StatusCancelled: {},
}

// Booking customer reservation intent with its running payment totals (minor units).
// AmountPaid <= TotalAmount is enforced by the payment reconciliation.
type Booking struct {
	ID          uint
	BookingNo   string
	CustomerID  uint
	StartAt     time.Time
	EndAt       time.Time
	Items       []Item
	Status      Status
	AmountPaid  int64
	TotalAmount int64
	CreatedBy   uint
	UpdatedBy   uint
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item one requested product.
type Item struct {
	ID         uint
	BookingID  uint
	ProductID  uint
	Quantity   int
	UnitPrice  int64
	TotalPrice int64
}

// NewBooking validates the request and builds a Pending booking.
// Duplicate products are merged.
func NewBooking(bookingNo string, customerID uint, startAt, endAt time.Time, items []Item, total int64, actor uint) (*Booking, error) {
	if customerID == 0 {
		return nil, ErrInvalidCustomer
	}
	if startAt.IsZero() || !endAt.After(startAt) {
		return nil, ErrInvalidWindow
	}
	if len(items) == 0 {
		return nil, ErrInvalidItems
	}
	for _, it := range items {
		if it.ProductID == 0 {
			return nil, ErrInvalidItems
		}
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if it.UnitPrice < 0 || it.TotalPrice < 0 {
			return nil, ErrInvalidPrice
		}
	}
	if total < 0 {
		return nil, ErrInvalidPrice
	}

	now := time.Now()
	return &Booking{
		BookingNo:   bookingNo,
		CustomerID:  customerID,
		StartAt:     startAt,
		EndAt:       endAt,
		Items:       MergeItems(items),
		Status:      StatusPending,
		TotalAmount: total,
		CreatedBy:   actor,
		UpdatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
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

// IsActive reports whether the booking can still be converted or paid against.
func (b *Booking) IsActive() bool {
	return b.DeletedAt == nil && b.Status != StatusCancelled
}

func (b *Booking) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[b.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo moves to target or fails with ErrInvalidStatusTransition.
func (b *Booking) TransitionTo(target Status, actor uint) error {
	if !b.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.Withf("%s -> %s", b.Status, target)
	}
	b.Status = target
	b.touch(actor)
	return nil
}

// Confirm marks the booking converted into an order.
func (b *Booking) Confirm(actor uint) error {
	return b.TransitionTo(StatusSuccess, actor)
}

// Cancel withdraws a pending booking.
func (b *Booking) Cancel(actor uint) error {
	return b.TransitionTo(StatusCancelled, actor)
}

// Balance what is still owed against the booking total.
func (b *Booking) Balance() int64 {
	return b.TotalAmount - b.AmountPaid
}

// IsFullyPaid reports a non-zero total that is completely paid.
func (b *Booking) IsFullyPaid() bool {
	return b.TotalAmount > 0 && b.AmountPaid == b.TotalAmount
}

// RecordPayment applies a credit and the revised total.
func (b *Booking) RecordPayment(amount, newTotal int64, actor uint) {
	b.AmountPaid += amount
	b.TotalAmount = newTotal
	b.touch(actor)
}

// AddCredit raises AmountPaid only; order-stage payments keep the booking total.
func (b *Booking) AddCredit(amount int64, actor uint) {
	b.AmountPaid += amount
	b.touch(actor)
}

func (b *Booking) touch(actor uint) {
	b.UpdatedBy = actor
	b.UpdatedAt = time.Now()
}
