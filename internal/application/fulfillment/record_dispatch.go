package fulfillment

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/order"
	apperrors "github.com/xiebiao/rental/pkg/errors"
	"github.com/xiebiao/rental/pkg/metrics"
	"github.com/xiebiao/rental/pkg/tracing"
)

// FulfillmentInput one dispatch or return line as submitted.
// Date is YYYY-MM-DD, Time HH:MM.
type FulfillmentInput struct {
	ProductID           uint
	OutsourcedProductID uint
	Quantity            int
	Date                string
	Time                string
}

// FulfillmentRequest a dispatch or return batch.
type FulfillmentRequest struct {
	OrderID uint
	Items   []FulfillmentInput
	Actor   uint
}

// toRecords parses the whole batch up front; one bad item rejects all of them.
func toRecords(items []FulfillmentInput, invalid *apperrors.AppError) ([]order.Fulfillment, error) {
	if len(items) == 0 {
		return nil, invalid.Withf("no items")
	}
	records := make([]order.Fulfillment, 0, len(items))
	for i, it := range items {
		at, err := order.ParseMoment(it.Date, it.Time, nil)
		if err != nil {
			return nil, invalid.Withf("item %d: %v", i, err)
		}
		records = append(records, order.Fulfillment{
			ProductID:           it.ProductID,
			OutsourcedProductID: it.OutsourcedProductID,
			Quantity:            it.Quantity,
			At:                  at,
		})
	}
	return records, nil
}

func units(records []order.Fulfillment) int {
	n := 0
	for _, r := range records {
		n += r.Quantity
	}
	return n
}

// RecordDispatchUseCase appends a dispatch batch and derives the order status.
type RecordDispatchUseCase struct {
	orderRepo order.Repository
	txManager port.TxManager
	after     afterCommit
}

func NewRecordDispatchUseCase(
	orderRepo order.Repository,
	txManager port.TxManager,
	notifier port.Notifier,
	cache port.OrderCache,
	logger *zap.Logger,
) *RecordDispatchUseCase {
	return &RecordDispatchUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
		after:     afterCommit{notifier: notifier, cache: cache, logger: logger},
	}
}

func (uc *RecordDispatchUseCase) Execute(ctx context.Context, req FulfillmentRequest) (*OrderView, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RecordDispatch")
	defer span.End()
	span.SetAttributes(attribute.Int64("order_id", int64(req.OrderID)))

	var (
		updated *order.Order
		batch   []order.Fulfillment
	)
	records, err := toRecords(req.Items, order.ErrInvalidDispatchItem)
	if err == nil {
		err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
			o, err := uc.orderRepo.LockByID(txCtx, req.OrderID)
			if err != nil {
				return err
			}
			before := len(o.Dispatches)
			if err := o.RecordDispatches(records, req.Actor); err != nil {
				return err
			}
			batch = o.Dispatches[before:]
			if err := uc.orderRepo.AddFulfillments(txCtx, batch); err != nil {
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

	metrics.AddCounterVec(metrics.FulfillmentItemsTotal, map[string]string{"kind": string(order.KindDispatch)}, float64(units(batch)))
	uc.after.logger.Info("dispatch recorded",
		zap.Uint("order_id", updated.ID),
		zap.Int("records", len(batch)),
		zap.String("status", updated.Status.String()),
		zap.Uint("actor", req.Actor),
	)

	view := NewOrderView(updated)
	uc.after.evict(ctx, updated.ID)
	if updated.Status == order.StatusDelivered {
		uc.after.notify(ctx, port.EventOrderDelivered, view)
	}
	return view, nil
}
