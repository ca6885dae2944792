package payment

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/domain/order"
	"github.com/xiebiao/rental/internal/domain/payment"
	apperrors "github.com/xiebiao/rental/pkg/errors"
	"github.com/xiebiao/rental/pkg/metrics"
	"github.com/xiebiao/rental/pkg/tracing"
)

const tracerName = "rental/payment"

// PaymentRequest input of AddPayment and UpdatePayment.
// Amount may be 0 when the call only revises the total downwards.
type PaymentRequest struct {
	BookingID uint
	Amount    int64
	NewTotal  int64
	Method    string
	Stage     string
	Actor     uint
}

// reconciler balance arithmetic shared by AddPayment and UpdatePayment.
type reconciler struct {
	bookingRepo booking.Repository
	orderRepo   order.Repository
	paymentRepo payment.Repository
	refundRepo  payment.RefundRepository
	txManager   port.TxManager
	notifier    port.Notifier
	cache       port.OrderCache
	logger      *zap.Logger
}

// outcome what one reconciliation wrote.
type outcome struct {
	booking *booking.Booking
	order   *order.Order
	entry   *payment.Payment
	refund  *payment.Refund
}

func (r *reconciler) run(ctx context.Context, op string, req PaymentRequest, rejectPaid bool) (*PaymentResult, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, op)
	defer span.End()
	span.SetAttributes(
		attribute.Int64("booking_id", int64(req.BookingID)),
		attribute.String("stage", req.Stage),
		attribute.Int64("amount", req.Amount),
	)

	out, err := r.reconcile(ctx, req, rejectPaid)
	tracing.RecordError(span, err)
	if err != nil {
		metrics.IncCounterVec(metrics.PaymentsRejectedTotal, map[string]string{"reason": rejectReason(err)})
		return nil, err
	}

	metrics.IncCounterVec(metrics.PaymentsTotal, map[string]string{
		"stage": string(out.entry.Stage),
		"type":  string(out.entry.Type),
	})
	r.logger.Info("payment recorded",
		zap.String("operation", op),
		zap.Uint("booking_id", out.booking.ID),
		zap.String("payment_no", out.entry.PaymentNo),
		zap.String("type", string(out.entry.Type)),
		zap.Int64("amount", out.entry.Amount),
		zap.Uint("actor", req.Actor),
	)

	result := &PaymentResult{
		Payment:            NewPaymentView(out.entry),
		BookingAmountPaid:  out.booking.AmountPaid,
		BookingTotalAmount: out.booking.TotalAmount,
		Balance:            out.booking.Balance(),
	}
	if out.order != nil {
		result.OrderID = out.order.ID
		result.OrderAmountPaid = out.order.AmountPaid
		result.OrderTotalAmount = out.order.TotalAmount
		result.Balance = out.order.Balance()
		if err := r.cache.DeleteOrder(ctx, out.order.ID); err != nil {
			r.logger.Warn("evict cached order", zap.Uint("order_id", out.order.ID), zap.Error(err))
		}
	}
	if out.refund != nil {
		result.Refund = NewRefundView(out.refund)
		metrics.IncCounter(metrics.RefundsCreatedTotal)
		r.notifier.Notify(ctx, port.NewEvent(port.EventRefundCreated, result.Refund))
	}
	return result, nil
}

func (r *reconciler) reconcile(ctx context.Context, req PaymentRequest, rejectPaid bool) (*outcome, error) {
	stage, err := payment.ParseStage(req.Stage)
	if err != nil {
		return nil, err
	}
	if req.NewTotal < 0 {
		return nil, payment.ErrInvalidTotal
	}
	if req.Amount < 0 {
		return nil, payment.ErrInvalidAmount
	}

	out := &outcome{}
	err = r.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := r.bookingRepo.LockByID(txCtx, req.BookingID)
		if err != nil {
			return err
		}
		if !b.IsActive() {
			return booking.ErrBookingNotFound
		}
		out.booking = b

		// once the booking has an order every stage settles against it, so the
		// order and booking paid amounts move together
		o, err := r.lockOrder(txCtx, b.ID)
		switch {
		case err == nil:
			out.order = o
			return r.applyToOrder(txCtx, out, stage, req, rejectPaid)
		case !errors.Is(err, order.ErrOrderNotFound):
			return err
		case stage == payment.StageOrder || stage == payment.StageReturn:
			return err
		}
		return r.applyToBooking(txCtx, out, stage, req, rejectPaid)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reconciler) lockOrder(ctx context.Context, bookingID uint) (*order.Order, error) {
	o, err := r.orderRepo.FindActiveByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return r.orderRepo.LockByID(ctx, o.ID)
}

// applyToBooking booking deposit before conversion: the cumulative paid may
// not pass the new total.
func (r *reconciler) applyToBooking(ctx context.Context, out *outcome, stage payment.Stage, req PaymentRequest, rejectPaid bool) error {
	b := out.booking
	if rejectPaid && b.IsFullyPaid() {
		return payment.ErrAlreadyPaid
	}
	cumulative := b.AmountPaid + req.Amount
	if cumulative > req.NewTotal {
		return payment.ExceedsBalance(req.NewTotal - b.AmountPaid)
	}

	entry, err := payment.NewCredit(b.ID, 0, req.Amount, req.Method, stage, payment.StateFor(cumulative, req.NewTotal), req.Actor)
	if err != nil {
		return err
	}
	if err := r.paymentRepo.Create(ctx, entry); err != nil {
		return err
	}
	b.RecordPayment(req.Amount, req.NewTotal, req.Actor)
	if err := r.bookingRepo.Update(ctx, b); err != nil {
		return err
	}
	out.entry = entry
	return nil
}

// applyToOrder order balance. A revised total below what the order already
// received opens a debit and a pending refund for the excess instead.
func (r *reconciler) applyToOrder(ctx context.Context, out *outcome, stage payment.Stage, req PaymentRequest, rejectPaid bool) error {
	b, o := out.booking, out.order
	if rejectPaid && o.IsFullyPaid() {
		return payment.ErrAlreadyPaid
	}

	if o.AmountPaid > req.NewTotal {
		excess := o.SettleOverpayment(req.NewTotal, req.Actor)
		debit, err := payment.NewDebit(b.ID, o.ID, excess, req.Method, stage, req.Actor)
		if err != nil {
			return err
		}
		if err := r.paymentRepo.Create(ctx, debit); err != nil {
			return err
		}
		refund, err := payment.NewRefund(debit, payment.OverpaymentReason)
		if err != nil {
			return err
		}
		if err := r.refundRepo.Create(ctx, refund); err != nil {
			return err
		}
		if err := r.orderRepo.Update(ctx, o); err != nil {
			return err
		}
		out.entry, out.refund = debit, refund
		return nil
	}

	balance := req.NewTotal - o.AmountPaid
	if req.Amount > balance {
		return payment.ExceedsBalance(balance)
	}
	entry, err := payment.NewCredit(b.ID, o.ID, req.Amount, req.Method, stage, payment.StateFor(o.AmountPaid+req.Amount, req.NewTotal), req.Actor)
	if err != nil {
		return err
	}
	if err := r.paymentRepo.Create(ctx, entry); err != nil {
		return err
	}
	o.RecordPayment(req.Amount, req.NewTotal, req.Actor)
	if err := r.orderRepo.Update(ctx, o); err != nil {
		return err
	}
	b.AddCredit(req.Amount, req.Actor)
	if err := r.bookingRepo.Update(ctx, b); err != nil {
		return err
	}
	out.entry = entry
	return nil
}

func rejectReason(err error) string {
	switch apperrors.GetAppError(err).Code {
	case apperrors.ErrCodeExceedsBalance:
		return "exceeds_balance"
	case apperrors.ErrCodeAlreadyPaid:
		return "already_paid"
	case apperrors.ErrCodeBookingNotFound, apperrors.ErrCodeOrderNotFound:
		return "not_found"
	case apperrors.ErrCodeInvalidParams:
		return "invalid_input"
	default:
		return "internal"
	}
}

// AddPaymentUseCase records a payment against a booking or its order.
type AddPaymentUseCase struct {
	reconciler
}

func NewAddPaymentUseCase(
	bookingRepo booking.Repository,
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	refundRepo payment.RefundRepository,
	txManager port.TxManager,
	notifier port.Notifier,
	cache port.OrderCache,
	logger *zap.Logger,
) *AddPaymentUseCase {
	return &AddPaymentUseCase{reconciler{
		bookingRepo: bookingRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		txManager:   txManager,
		notifier:    notifier,
		cache:       cache,
		logger:      logger,
	}}
}

func (uc *AddPaymentUseCase) Execute(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	return uc.run(ctx, "AddPayment", req, false)
}

// UpdatePaymentUseCase same arithmetic as AddPayment, refused outright once
// the target is fully paid.
type UpdatePaymentUseCase struct {
	reconciler
}

func NewUpdatePaymentUseCase(
	bookingRepo booking.Repository,
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	refundRepo payment.RefundRepository,
	txManager port.TxManager,
	notifier port.Notifier,
	cache port.OrderCache,
	logger *zap.Logger,
) *UpdatePaymentUseCase {
	return &UpdatePaymentUseCase{reconciler{
		bookingRepo: bookingRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		txManager:   txManager,
		notifier:    notifier,
		cache:       cache,
		logger:      logger,
	}}
}

func (uc *UpdatePaymentUseCase) Execute(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	return uc.run(ctx, "UpdatePayment", req, true)
}
