package payment

import (
	"time"
)

// OverpaymentReason reason stamped on refunds opened by a reduced order total.
const OverpaymentReason = "order total amount exceeds booking total amount"

// RefundStatus refund status, resolved manually by an external actor.
type RefundStatus string

const (
	RefundPending  RefundStatus = "pending"
	RefundApproved RefundStatus = "approved"
	RefundRejected RefundStatus = "rejected"
)

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundPending:  {RefundApproved, RefundRejected},
	RefundApproved: {},
	RefundRejected: {},
}

// Refund money owed back to the customer, linked to its debit entry.
type Refund struct {
	ID         uint
	RefundNo   string
	PaymentID  uint
	BookingID  uint
	Amount     int64
	Reason     string
	Status     RefundStatus
	ResolvedBy uint
	ResolvedAt *time.Time
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRefund opens a pending refund for the debit entry.
func NewRefund(debit *Payment, reason string) (*Refund, error) {
	if debit == nil || debit.Type != TransactionDebit {
		return nil, ErrInvalidRefundSource
	}
	now := time.Now()
	return &Refund{
		RefundNo:  GenerateRefundNo(),
		PaymentID: debit.ID,
		BookingID: debit.BookingID,
		Amount:    debit.Amount,
		Reason:    reason,
		Status:    RefundPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *Refund) CanTransitionTo(target RefundStatus) bool {
	for _, allowed := range refundTransitions[r.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Resolve approves or rejects a pending refund.
func (r *Refund) Resolve(approve bool, actor uint) error {
	target := RefundRejected
	if approve {
		target = RefundApproved
	}
	if !r.CanTransitionTo(target) {
		return ErrInvalidRefundTransition.Withf("%s -> %s", r.Status, target)
	}
	now := time.Now()
	r.Status = target
	r.ResolvedBy = actor
	r.ResolvedAt = &now
	r.UpdatedAt = now
	return nil
}
