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

// RecordReturnUseCase appends a return batch, puts returned owned units back
// into available stock and derives the order status.
type RecordReturnUseCase struct {
	orderRepo order.Repository
	stock     stockLedger
	txManager port.TxManager
	after     afterCommit
}

func NewRecordReturnUseCase(
	orderRepo order.Repository,
	inventoryRepo inventory.Repository,
	logRepo inventory.LogRepository,
	txManager port.TxManager,
	notifier port.Notifier,
	cache port.OrderCache,
	logger *zap.Logger,
) *RecordReturnUseCase {
	return &RecordReturnUseCase{
		orderRepo: orderRepo,
		stock:     stockLedger{inventories: inventoryRepo, logs: logRepo},
		txManager: txManager,
		after:     afterCommit{notifier: notifier, cache: cache, logger: logger},
	}
}

func (uc *RecordReturnUseCase) Execute(ctx context.Context, req FulfillmentRequest) (*OrderView, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RecordReturn")
	defer span.End()
	span.SetAttributes(attribute.Int64("order_id", int64(req.OrderID)))

	var (
		updated *order.Order
		batch   []order.Fulfillment
	)
	records, err := toRecords(req.Items, order.ErrInvalidReturnItem)
	if err == nil {
		err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
			o, err := uc.orderRepo.LockByID(txCtx, req.OrderID)
			if err != nil {
				return err
			}
			before := len(o.Returns)
			released, err := o.RecordReturns(records, req.Actor)
			if err != nil {
				return err
			}
			batch = o.Returns[before:]
			if err := uc.orderRepo.AddFulfillments(txCtx, batch); err != nil {
				return err
			}
			if err := uc.stock.release(txCtx, released, o.ID, releaseReturn); err != nil {
				return err
			}
			if err := uc.orderRepo.Update(txCtx, o); err != nil {
				return err
			}
			updated = o
			return nil
		})
	}
	tracing.RecordError(span, err)
	if err != nil {
		return nil, err
	}

	metrics.AddCounterVec(metrics.FulfillmentItemsTotal, map[string]string{"kind": string(order.KindReturn)}, float64(units(batch)))
	uc.after.logger.Info("return recorded",
		zap.Uint("order_id", updated.ID),
		zap.Int("records", len(batch)),
		zap.String("status", updated.Status.String()),
		zap.Uint("actor", req.Actor),
	)

	view := NewOrderView(updated)
	uc.after.evict(ctx, updated.ID)
	if updated.Status == order.StatusReturned {
		uc.after.notify(ctx, port.EventOrderReturned, view)
	}
	return view, nil
}
