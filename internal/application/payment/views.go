package payment

import (
	"github.com/xiebiao/rental/internal/domain/payment"
)

const timestampLayout = "2006-01-02 15:04:05"

type PaymentView struct {
	ID              uint   `json:"id"`
	PaymentNo       string `json:"payment_no"`
	BookingID       uint   `json:"booking_id"`
	OrderID         uint   `json:"order_id,omitempty"`
	Amount          int64  `json:"amount"`
	Method          string `json:"method"`
	TransactionType string `json:"transaction_type"`
	PaymentState    string `json:"payment_state"`
	Status          string `json:"status"`
	Stage           string `json:"stage"`
	Actor           uint   `json:"actor"`
	CreatedAt       string `json:"created_at"`
}

func NewPaymentView(p *payment.Payment) *PaymentView {
	return &PaymentView{
		ID:              p.ID,
		PaymentNo:       p.PaymentNo,
		BookingID:       p.BookingID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Method:          p.Method,
		TransactionType: string(p.Type),
		PaymentState:    string(p.State),
		Status:          string(p.Status),
		Stage:           string(p.Stage),
		Actor:           p.Actor,
		CreatedAt:       p.CreatedAt.Format(timestampLayout),
	}
}

type RefundView struct {
	ID         uint   `json:"id"`
	RefundNo   string `json:"refund_no"`
	PaymentID  uint   `json:"payment_id"`
	BookingID  uint   `json:"booking_id"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	ResolvedBy uint   `json:"resolved_by,omitempty"`
	ResolvedAt string `json:"resolved_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func NewRefundView(r *payment.Refund) *RefundView {
	v := &RefundView{
		ID:         r.ID,
		RefundNo:   r.RefundNo,
		PaymentID:  r.PaymentID,
		BookingID:  r.BookingID,
		Amount:     r.Amount,
		Reason:     r.Reason,
		Status:     string(r.Status),
		ResolvedBy: r.ResolvedBy,
		CreatedAt:  r.CreatedAt.Format(timestampLayout),
	}
	if r.ResolvedAt != nil {
		v.ResolvedAt = r.ResolvedAt.Format(timestampLayout)
	}
	return v
}

// PaymentResult outcome of a reconciliation: the ledger entry written, the
// refund it opened (if any) and the running totals afterwards.
type PaymentResult struct {
	Payment            *PaymentView `json:"payment"`
	Refund             *RefundView  `json:"refund,omitempty"`
	BookingAmountPaid  int64        `json:"booking_amount_paid"`
	BookingTotalAmount int64        `json:"booking_total_amount"`
	OrderID            uint         `json:"order_id,omitempty"`
	OrderAmountPaid    int64        `json:"order_amount_paid,omitempty"`
	OrderTotalAmount   int64        `json:"order_total_amount,omitempty"`
	Balance            int64        `json:"balance"`
}
