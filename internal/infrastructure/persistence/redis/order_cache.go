package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/rental/internal/application/port"
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

// OrderCache order detail cache (cache-aside).
// Key: order:detail:{order_id}. The value is the JSON order view.
type OrderCache struct {
	client *redis.Client
}

var _ port.OrderCache = (*OrderCache)(nil)

func NewOrderCache(client *redis.Client) *OrderCache {
	return &OrderCache{client: client}
}

func orderKey(orderID uint) string {
	return fmt.Sprintf("order:detail:%d", orderID)
}

// GetOrder returns "" on a miss.
func (c *OrderCache) GetOrder(ctx context.Context, orderID uint) (string, error) {
	val, err := c.client.Get(ctx, orderKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.ErrRedisError.Withf("get order %d: %v", orderID, err)
	}
	return val, nil
}

func (c *OrderCache) SetOrder(ctx context.Context, orderID uint, data string, ttl time.Duration) error {
	if err := c.client.Set(ctx, orderKey(orderID), data, ttl).Err(); err != nil {
		return apperrors.ErrRedisError.Withf("set order %d: %v", orderID, err)
	}
	return nil
}

func (c *OrderCache) DeleteOrder(ctx context.Context, orderID uint) error {
	if err := c.client.Del(ctx, orderKey(orderID)).Err(); err != nil {
		return apperrors.ErrRedisError.Withf("delete order %d: %v", orderID, err)
	}
	return nil
}
