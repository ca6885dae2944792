package fulfillment

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/internal/domain/order"
	"github.com/xiebiao/rental/pkg/metrics"
	"github.com/xiebiao/rental/pkg/tracing"
)

// CreateOrderUseCase converts a booking into an order, reserving its stock.
type CreateOrderUseCase struct {
	orderRepo   order.Repository
	bookingRepo booking.Repository
	stock       stockLedger
	txManager   port.TxManager
	after       afterCommit
}

func NewCreateOrderUseCase(
	orderRepo order.Repository,
	bookingRepo booking.Repository,
	inventoryRepo inventory.Repository,
	logRepo inventory.LogRepository,
	txManager port.TxManager,
	notifier port.Notifier,
	cache port.OrderCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo:   orderRepo,
		bookingRepo: bookingRepo,
		stock:       stockLedger{inventories: inventoryRepo, logs: logRepo},
		txManager:   txManager,
		after:       afterCommit{notifier: notifier, cache: cache, cacheTTL: cacheTTL, logger: logger},
	}
}

// CreateOrderRequest actor comes from the token.
type CreateOrderRequest struct {
	BookingID       uint
	Items           []LineInput
	OutsourcedItems []OutsourcedLineInput
	Pricing         PricingInput
	Actor           uint
}

// Execute runs the conversion as one transaction:
//  1. lock the booking; it must be active and have no active order
//  2. merge duplicate lines
//  3. lock the inventory rows, collect every shortfall
//  4. write the order, reserve each line (conditional update) and log it
//  5. booking -> Success
//
// Any failure rolls back all of it; a shortfall reports every short line.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*OrderView, error) {
	start := time.Now()
	metrics.IncGauge(metrics.OrdersInProgress)
	defer metrics.DecGauge(metrics.OrdersInProgress)

	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("booking_id", int64(req.BookingID)))

	created, err := uc.create(ctx, req)
	tracing.RecordError(span, err)
	if err != nil {
		metrics.IncCounterVec(metrics.OrdersFailedTotal, map[string]string{"reason": failureReason(err)})
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersCreatedTotal)
	metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int64("order_id", int64(created.ID)))

	view := NewOrderView(created)
	uc.after.logger.Info("order created",
		zap.Uint("order_id", created.ID),
		zap.String("order_no", created.OrderNo),
		zap.Uint("booking_id", created.BookingID),
		zap.Uint("actor", req.Actor),
	)
	uc.after.warm(ctx, view)
	uc.after.notify(ctx, port.EventOrderCreated, view)
	return view, nil
}

func (uc *CreateOrderUseCase) create(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	items, outsourced := toLines(req.Items, req.OutsourcedItems)
	if err := order.ValidateLines(items, outsourced); err != nil {
		return nil, err
	}

	var created *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookingRepo.LockByID(txCtx, req.BookingID)
		if err != nil {
			return err
		}
		if !b.IsActive() {
			return booking.ErrBookingNotFound
		}

		if _, err := uc.orderRepo.FindActiveByBookingID(txCtx, b.ID); err == nil {
			return order.ErrOrderAlreadyExists
		} else if !errors.Is(err, order.ErrOrderNotFound) {
			return err
		}

		o, err := order.NewOrder(order.GenerateOrderNo(), b.ID, items, outsourced, req.Pricing.toPricing(), b.AmountPaid, req.Actor)
		if err != nil {
			return err
		}
		want := o.ProductQuantities()
		if err := uc.stock.ensureAvailable(txCtx, want, "create"); err != nil {
			return err
		}

		// the order row goes first so the reservation log can reference it
		if err := uc.orderRepo.Create(txCtx, o); err != nil {
			return err
		}
		if err := uc.stock.reserve(txCtx, want, o.ID); err != nil {
			return err
		}

		if err := b.Confirm(req.Actor); err != nil {
			return err
		}
		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
