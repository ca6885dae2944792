package fulfillment

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

const tracerName = "rental/fulfillment"

// afterCommit post-commit side effects of the order use cases.
// Nothing here may fail the operation: errors are logged and dropped.
type afterCommit struct {
	notifier port.Notifier
	cache    port.OrderCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func (a afterCommit) notify(ctx context.Context, eventType string, view *OrderView) {
	a.notifier.Notify(ctx, port.NewEvent(eventType, view))
}

// warm stores the fresh view so the next read skips the store.
func (a afterCommit) warm(ctx context.Context, view *OrderView) {
	data, err := json.Marshal(view)
	if err != nil {
		a.logger.Warn("encode order view", zap.Uint("order_id", view.ID), zap.Error(err))
		return
	}
	if err := a.cache.SetOrder(ctx, view.ID, string(data), a.cacheTTL); err != nil {
		a.logger.Warn("cache order", zap.Uint("order_id", view.ID), zap.Error(err))
	}
}

func (a afterCommit) evict(ctx context.Context, orderID uint) {
	if err := a.cache.DeleteOrder(ctx, orderID); err != nil {
		a.logger.Warn("evict cached order", zap.Uint("order_id", orderID), zap.Error(err))
	}
}

// failureReason metric label of a failed operation.
func failureReason(err error) string {
	switch code := apperrors.GetAppError(err).Code; {
	case code == apperrors.ErrCodeInsufficientStock:
		return "insufficient_stock"
	case code == apperrors.ErrCodeOrderExists:
		return "order_exists"
	case code >= 40400 && code < 40500:
		return "not_found"
	case code == apperrors.ErrCodeInvalidOrderStatus:
		return "invalid_status"
	case code >= 40000 && code < 50000:
		return "invalid_input"
	default:
		return "internal"
	}
}
