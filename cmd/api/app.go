package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbooking "github.com/xiebiao/rental/internal/application/booking"
	"github.com/xiebiao/rental/internal/application/fulfillment"
	appinventory "github.com/xiebiao/rental/internal/application/inventory"
	apppayment "github.com/xiebiao/rental/internal/application/payment"
	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/infrastructure/config"
	"github.com/xiebiao/rental/internal/interface/http/handler"
	"github.com/xiebiao/rental/internal/interface/http/middleware"
	"github.com/xiebiao/rental/internal/interface/http/router"
	"github.com/xiebiao/rental/pkg/jwt"
)

// newApp wires the application by hand; it follows the dependency graph
// declared in wire.go.
// Repository <- UseCase <- Handler <- Router
func newApp(cfg *config.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	stores, cleanupStores, err := provideStores(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cache, cleanupCache, err := provideCache(cfg, logger)
	if err != nil {
		cleanupStores()
		return nil, nil, err
	}
	notifier, cleanupNotifier, err := provideNotifier(cfg, logger)
	if err != nil {
		cleanupCache()
		cleanupStores()
		return nil, nil, err
	}

	engine := newRouter(cfg, stores, cache, notifier, provideJWTManager(cfg), logger)
	return engine, func() {
		cleanupNotifier()
		cleanupCache()
		cleanupStores()
	}, nil
}

func newRouter(cfg *config.Config, s *Stores, cache *Cache, notifier port.Notifier, jwtManager *jwt.Manager, logger *zap.Logger) *gin.Engine {
	ttl := provideOrderCacheTTL(cfg)

	handlers := router.Handlers{
		Inventory: handler.NewInventoryHandler(
			appinventory.NewAddStockUseCase(s.Inventories, s.InventoryLogs, s.TxManager, notifier, logger),
			appinventory.NewCheckAvailabilityUseCase(s.Inventories),
			appinventory.NewListLogsUseCase(s.Inventories, s.InventoryLogs),
		),
		Booking: handler.NewBookingHandler(
			appbooking.NewCreateBookingUseCase(s.Bookings, logger),
			appbooking.NewCancelBookingUseCase(s.Bookings, s.TxManager, logger),
			appbooking.NewGetBookingUseCase(s.Bookings),
		),
		Order: handler.NewOrderHandler(
			fulfillment.NewCreateOrderUseCase(s.Orders, s.Bookings, s.Inventories, s.InventoryLogs, s.TxManager, notifier, cache.Orders, ttl, logger),
			fulfillment.NewUpdateOrderUseCase(s.Orders, s.Inventories, s.InventoryLogs, s.TxManager, notifier, cache.Orders, logger),
			fulfillment.NewGetOrderUseCase(s.Orders, cache.Orders, ttl, logger),
			fulfillment.NewRecordDispatchUseCase(s.Orders, s.TxManager, notifier, cache.Orders, logger),
			fulfillment.NewRecordReturnUseCase(s.Orders, s.Inventories, s.InventoryLogs, s.TxManager, notifier, cache.Orders, logger),
		),
		Payment: handler.NewPaymentHandler(
			apppayment.NewAddPaymentUseCase(s.Bookings, s.Orders, s.Payments, s.Refunds, s.TxManager, notifier, cache.Orders, logger),
			apppayment.NewUpdatePaymentUseCase(s.Bookings, s.Orders, s.Payments, s.Refunds, s.TxManager, notifier, cache.Orders, logger),
			apppayment.NewResolveRefundUseCase(s.Refunds, s.TxManager, notifier, logger),
			apppayment.NewListPaymentsUseCase(s.Bookings, s.Payments),
			apppayment.NewListRefundsUseCase(s.Bookings, s.Refunds),
		),
	}

	auth := middleware.NewAuthMiddleware(jwtManager, cache.Blacklist)
	return router.New(cfg, handlers, auth, logger)
}
