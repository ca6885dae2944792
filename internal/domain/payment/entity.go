package payment

import (
	"time"
)

// TransactionType direction of money.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit" // customer paid us
	TransactionDebit  TransactionType = "debit"  // we owe the customer
)

// State whether the entry settled the balance.
type State string

const (
	StatePartial  State = "partial"
	StateComplete State = "complete"
)

// Stage lifecycle phase the payment was taken in.
type Stage string

const (
	StageBooking Stage = "booking"
	StageOrder   Stage = "order"
	StageReturn  Stage = "return"
	StageOther   Stage = "other"
)

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(s); st {
	case StageBooking, StageOrder, StageReturn, StageOther:
		return st, nil
	default:
		return "", ErrInvalidStage.Withf("%q", s)
	}
}

// Status payment status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

var statusTransitions = map[Status][]Status{
	StatusPending:  {StatusSuccess, StatusFailed, StatusRefunded},
	StatusSuccess:  {StatusRefunded},
	StatusFailed:   {},
	StatusRefunded: {},
}

// Payment one ledger entry. Entries are append-only: once written they are never updated.
type Payment struct {
	ID        uint
	PaymentNo string
	BookingID uint
	OrderID   uint // zero for booking-stage payments
	Amount    int64
	Method    string
	Type      TransactionType
	State     State
	Status    Status
	Stage     Stage
	Actor     uint
	CreatedAt time.Time
}

// NewCredit builds a settled credit entry.
func NewCredit(bookingID, orderID uint, amount int64, method string, stage Stage, state State, actor uint) (*Payment, error) {
	p, err := newPayment(bookingID, orderID, amount, method, stage, actor)
	if err != nil {
		return nil, err
	}
	p.Type = TransactionCredit
	p.State = state
	if err := p.transitionTo(StatusSuccess); err != nil {
		return nil, err
	}
	return p, nil
}

// NewDebit builds the debit entry for money owed back; a Refund tracks its approval.
func NewDebit(bookingID, orderID uint, amount int64, method string, stage Stage, actor uint) (*Payment, error) {
	p, err := newPayment(bookingID, orderID, amount, method, stage, actor)
	if err != nil {
		return nil, err
	}
	p.Type = TransactionDebit
	p.State = StateComplete
	if err := p.transitionTo(StatusRefunded); err != nil {
		return nil, err
	}
	return p, nil
}

func newPayment(bookingID, orderID uint, amount int64, method string, stage Stage, actor uint) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if method == "" {
		return nil, ErrInvalidMethod
	}
	if _, err := ParseStage(string(stage)); err != nil {
		return nil, err
	}
	return &Payment{
		PaymentNo: GeneratePaymentNo(),
		BookingID: bookingID,
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		Stage:     stage,
		Actor:     actor,
		CreatedAt: time.Now(),
	}, nil
}

func (p *Payment) transitionTo(target Status) error {
	for _, allowed := range statusTransitions[p.Status] {
		if allowed == target {
			p.Status = target
			return nil
		}
	}
	return ErrInvalidStatusTransition.Withf("payment %s -> %s", p.Status, target)
}

// StateFor partial while the cumulative paid is below the total.
func StateFor(cumulative, total int64) State {
	if cumulative < total {
		return StatePartial
	}
	return StateComplete
}
