package main

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/internal/domain/order"
	"github.com/xiebiao/rental/internal/domain/payment"
	"github.com/xiebiao/rental/internal/infrastructure/config"
	"github.com/xiebiao/rental/internal/infrastructure/notify"
	"github.com/xiebiao/rental/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/rental/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/rental/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/rental/internal/interface/http/middleware"
	"github.com/xiebiao/rental/pkg/jwt"
	"github.com/xiebiao/rental/pkg/mq"
)

// Stores the repositories of the selected backend plus its unit of work.
type Stores struct {
	Inventories   inventory.Repository
	InventoryLogs inventory.LogRepository
	Bookings      booking.Repository
	Orders        order.Repository
	Payments      payment.Repository
	Refunds       payment.RefundRepository
	TxManager     port.TxManager
}

// provideStores opens store.driver: mysql or memory.
func provideStores(cfg *config.Config, logger *zap.Logger) (*Stores, func(), error) {
	if cfg.Store.Driver == "memory" {
		logger.Warn("using in-memory store, data is lost on exit")
		store := memory.NewStore()
		return &Stores{
			Inventories:   memory.NewInventoryRepository(store),
			InventoryLogs: memory.NewInventoryLogRepository(store),
			Bookings:      memory.NewBookingRepository(store),
			Orders:        memory.NewOrderRepository(store),
			Payments:      memory.NewPaymentRepository(store),
			Refunds:       memory.NewRefundRepository(store),
			TxManager:     memory.NewTxManager(store),
		}, func() {}, nil
	}

	db, err := mysql.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &Stores{
		Inventories:   mysql.NewInventoryRepository(db),
		InventoryLogs: mysql.NewInventoryLogRepository(db),
		Bookings:      mysql.NewBookingRepository(db),
		Orders:        mysql.NewOrderRepository(db),
		Payments:      mysql.NewPaymentRepository(db),
		Refunds:       mysql.NewRefundRepository(db),
		TxManager:     mysql.NewTxManager(db),
	}, cleanup, nil
}

// Cache redis backed order cache and token blacklist; both degrade to no-ops
// when redis is disabled.
type Cache struct {
	Orders    port.OrderCache
	Blacklist middleware.Blacklist
}

func provideCache(cfg *config.Config, logger *zap.Logger) (*Cache, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Warn("redis disabled: order cache and token blacklist are off")
		return &Cache{Orders: port.NopOrderCache{}}, func() {}, nil
	}
	client, err := redis.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return newCache(client), func() { _ = client.Close() }, nil
}

func newCache(client *goredis.Client) *Cache {
	return &Cache{
		Orders:    redis.NewOrderCache(client),
		Blacklist: redis.NewTokenBlacklist(client),
	}
}

// provideNotifier publishes to RabbitMQ when mq is enabled, otherwise logs.
func provideNotifier(cfg *config.Config, logger *zap.Logger) (port.Notifier, func(), error) {
	if !cfg.MQ.Enabled {
		return notify.NewLogNotifier(logger.Named("events")), func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mq: %w", err)
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close mq publisher", zap.Error(err))
		}
	}
	return notify.NewMQNotifier(publisher, cfg.MQ.PublishTimeout, logger), cleanup, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideOrderCacheTTL(cfg *config.Config) time.Duration {
	return cfg.Fulfillment.OrderCacheTTL
}
