package fulfillment

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/internal/domain/order"
	"github.com/xiebiao/rental/pkg/metrics"
	"github.com/xiebiao/rental/pkg/tracing"
)

// UpdateOrderUseCase replaces the lines and totals of an order.
// The reservation is adjusted by the per-product difference only.
type UpdateOrderUseCase struct {
	orderRepo order.Repository
	stock     stockLedger
	txManager port.TxManager
	after     afterCommit
}

func NewUpdateOrderUseCase(
	orderRepo order.Repository,
	inventoryRepo inventory.Repository,
	logRepo inventory.LogRepository,
	txManager port.TxManager,
	notifier port.Notifier,
	cache port.OrderCache,
	logger *zap.Logger,
) *UpdateOrderUseCase {
	return &UpdateOrderUseCase{
		orderRepo: orderRepo,
		stock:     stockLedger{inventories: inventoryRepo, logs: logRepo},
		txManager: txManager,
		after:     afterCommit{notifier: notifier, cache: cache, logger: logger},
	}
}

type UpdateOrderRequest struct {
	OrderID         uint
	Items           []LineInput
	OutsourcedItems []OutsourcedLineInput
	Pricing         PricingInput
	Actor           uint
}

// Execute releases what the update removes, checks and reserves what it adds,
// and rewrites the lines, all in one transaction.
func (uc *UpdateOrderUseCase) Execute(ctx context.Context, req UpdateOrderRequest) (*OrderView, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("order_id", int64(req.OrderID)))

	updated, delta, err := uc.update(ctx, req)
	tracing.RecordError(span, err)
	if err != nil {
		metrics.IncCounterVec(metrics.OrderUpdatesTotal, map[string]string{"result": failureReason(err)})
		return nil, err
	}
	metrics.IncCounterVec(metrics.OrderUpdatesTotal, map[string]string{"result": "success"})

	uc.after.logger.Info("order updated",
		zap.Uint("order_id", updated.ID),
		zap.Any("stock_delta", delta),
		zap.Uint("actor", req.Actor),
	)
	view := NewOrderView(updated)
	uc.after.evict(ctx, updated.ID)
	uc.after.notify(ctx, port.EventOrderUpdated, view)
	return view, nil
}

func (uc *UpdateOrderUseCase) update(ctx context.Context, req UpdateOrderRequest) (*order.Order, map[uint]int, error) {
	items, outsourced := toLines(req.Items, req.OutsourcedItems)

	var (
		updated *order.Order
		delta   map[uint]int
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}

		delta, err = o.ReplaceLines(items, outsourced, req.Pricing.toPricing(), req.Actor)
		if err != nil {
			return err
		}

		reserve, release := splitDelta(delta)
		if err := uc.stock.release(txCtx, release, o.ID, releaseOrderUpdate); err != nil {
			return err
		}
		if err := uc.stock.ensureAvailable(txCtx, reserve, "update"); err != nil {
			return err
		}
		if err := uc.stock.reserve(txCtx, reserve, o.ID); err != nil {
			return err
		}

		if err := uc.orderRepo.ReplaceLines(txCtx, o); err != nil {
			return err
		}
		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, delta, nil
}

