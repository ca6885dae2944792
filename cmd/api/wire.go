//go:build wireinject
// +build wireinject

// Wire injector. `go tool wire gen ./cmd/api` generates wire_gen.go with the same
// graph newApp assembles by hand.

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.uber.org/zap"

	appbooking "github.com/xiebiao/rental/internal/application/booking"
	"github.com/xiebiao/rental/internal/application/fulfillment"
	appinventory "github.com/xiebiao/rental/internal/application/inventory"
	apppayment "github.com/xiebiao/rental/internal/application/payment"
	"github.com/xiebiao/rental/internal/infrastructure/config"
	"github.com/xiebiao/rental/internal/interface/http/handler"
	"github.com/xiebiao/rental/internal/interface/http/middleware"
	"github.com/xiebiao/rental/internal/interface/http/router"
)

// infrastructureSet store backend, cache, notifier
var infrastructureSet = wire.NewSet(
	provideStores,
	wire.FieldsOf(new(*Stores), "Inventories", "InventoryLogs", "Bookings", "Orders", "Payments", "Refunds", "TxManager"),
	provideCache,
	wire.FieldsOf(new(*Cache), "Orders", "Blacklist"),
	provideNotifier,
	provideOrderCacheTTL,
)

var applicationSet = wire.NewSet(
	appinventory.NewAddStockUseCase,
	appinventory.NewCheckAvailabilityUseCase,
	appinventory.NewListLogsUseCase,
	appbooking.NewCreateBookingUseCase,
	appbooking.NewCancelBookingUseCase,
	appbooking.NewGetBookingUseCase,
	fulfillment.NewCreateOrderUseCase,
	fulfillment.NewUpdateOrderUseCase,
	fulfillment.NewGetOrderUseCase,
	fulfillment.NewRecordDispatchUseCase,
	fulfillment.NewRecordReturnUseCase,
	apppayment.NewAddPaymentUseCase,
	apppayment.NewUpdatePaymentUseCase,
	apppayment.NewResolveRefundUseCase,
	apppayment.NewListPaymentsUseCase,
	apppayment.NewListRefundsUseCase,
)

var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewInventoryHandler,
	handler.NewBookingHandler,
	handler.NewOrderHandler,
	handler.NewPaymentHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp returns the engine and a cleanup closing every connection.
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
