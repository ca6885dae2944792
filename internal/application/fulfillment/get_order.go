package fulfillment

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/order"
)

// GetOrderUseCase cache-aside read of one order.
// A cache failure degrades to a store read.
type GetOrderUseCase struct {
	orderRepo order.Repository
	cache     port.OrderCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewGetOrderUseCase(orderRepo order.Repository, cache port.OrderCache, cacheTTL time.Duration, logger *zap.Logger) *GetOrderUseCase {
	return &GetOrderUseCase{
		orderRepo: orderRepo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID uint) (*OrderView, error) {
	data, err := uc.cache.GetOrder(ctx, orderID)
	if err != nil {
		uc.logger.Warn("read cached order", zap.Uint("order_id", orderID), zap.Error(err))
	}
	if data != "" {
		var view OrderView
		decodeErr := json.Unmarshal([]byte(data), &view)
		if decodeErr == nil {
			return &view, nil
		}
		uc.logger.Warn("decode cached order", zap.Uint("order_id", orderID), zap.Error(decodeErr))
	}

	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view := NewOrderView(o)
	afterCommit{cache: uc.cache, cacheTTL: uc.cacheTTL, logger: uc.logger}.warm(ctx, view)
	return view, nil
}
