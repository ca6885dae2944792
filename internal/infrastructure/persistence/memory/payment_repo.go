package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/rental/internal/domain/payment"
)

type paymentRepository struct {
	store *Store
}

func NewPaymentRepository(store *Store) payment.Repository {
	return &paymentRepository{store: store}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.store.run(ctx, func(st *state) error {
		p.ID = st.nextID("payments")
		cp := *p
		st.payments = append(st.payments, &cp)
		return nil
	})
}

func (r *paymentRepository) ListByBookingID(ctx context.Context, bookingID uint) ([]*payment.Payment, error) {
	var list []*payment.Payment
	err := r.store.run(ctx, func(st *state) error {
		for _, p := range st.payments {
			if p.BookingID == bookingID {
				cp := *p
				list = append(list, &cp)
			}
		}
		return nil
	})
	return list, err
}

type refundRepository struct {
	store *Store
}

func NewRefundRepository(store *Store) payment.RefundRepository {
	return &refundRepository{store: store}
}

func (r *refundRepository) Create(ctx context.Context, refund *payment.Refund) error {
	return r.store.run(ctx, func(st *state) error {
		refund.ID = st.nextID("refunds")
		st.refunds[refund.ID] = copyRefund(refund)
		return nil
	})
}

func (r *refundRepository) LockByID(ctx context.Context, id uint) (*payment.Refund, error) {
	var found *payment.Refund
	err := r.store.run(ctx, func(st *state) error {
		refund, ok := st.refunds[id]
		if !ok || refund.DeletedAt != nil {
			return payment.ErrRefundNotFound
		}
		found = copyRefund(refund)
		return nil
	})
	return found, err
}

func (r *refundRepository) Update(ctx context.Context, refund *payment.Refund) error {
	return r.store.run(ctx, func(st *state) error {
		current, ok := st.refunds[refund.ID]
		if !ok || current.DeletedAt != nil {
			return payment.ErrRefundNotFound
		}
		next := copyRefund(current)
		next.Status = refund.Status
		next.ResolvedBy = refund.ResolvedBy
		next.ResolvedAt = refund.ResolvedAt
		next.UpdatedAt = refund.UpdatedAt
		st.refunds[refund.ID] = copyRefund(next)
		return nil
	})
}

func (r *refundRepository) ListByBookingID(ctx context.Context, bookingID uint) ([]*payment.Refund, error) {
	var list []*payment.Refund
	err := r.store.run(ctx, func(st *state) error {
		for _, refund := range st.refunds {
			if refund.BookingID == bookingID && refund.DeletedAt == nil {
				list = append(list, copyRefund(refund))
			}
		}
		return nil
	})
	sortRefunds(list)
	return list, err
}

func sortRefunds(list []*payment.Refund) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
