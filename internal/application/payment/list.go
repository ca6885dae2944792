package payment

import (
	"context"

	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/domain/payment"
)

// ListPaymentsUseCase ledger entries of a booking, oldest first.
type ListPaymentsUseCase struct {
	bookingRepo booking.Repository
	paymentRepo payment.Repository
}

func NewListPaymentsUseCase(bookingRepo booking.Repository, paymentRepo payment.Repository) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{bookingRepo: bookingRepo, paymentRepo: paymentRepo}
}

func (uc *ListPaymentsUseCase) Execute(ctx context.Context, bookingID uint) ([]*PaymentView, error) {
	if _, err := uc.bookingRepo.FindByID(ctx, bookingID); err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	views := make([]*PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, NewPaymentView(p))
	}
	return views, nil
}

// ListRefundsUseCase refunds of a booking.
type ListRefundsUseCase struct {
	bookingRepo booking.Repository
	refundRepo  payment.RefundRepository
}

func NewListRefundsUseCase(bookingRepo booking.Repository, refundRepo payment.RefundRepository) *ListRefundsUseCase {
	return &ListRefundsUseCase{bookingRepo: bookingRepo, refundRepo: refundRepo}
}

func (uc *ListRefundsUseCase) Execute(ctx context.Context, bookingID uint) ([]*RefundView, error) {
	if _, err := uc.bookingRepo.FindByID(ctx, bookingID); err != nil {
		return nil, err
	}
	refunds, err := uc.refundRepo.ListByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	views := make([]*RefundView, 0, len(refunds))
	for _, r := range refunds {
		views = append(views, NewRefundView(r))
	}
	return views, nil
}
