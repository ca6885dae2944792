// Package router assembles the gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/infrastructure/config"
	"github.com/xiebiao/rental/internal/interface/http/handler"
	"github.com/xiebiao/rental/internal/interface/http/middleware"
	"github.com/xiebiao/rental/pkg/response"
)

// Handlers every HTTP handler the API serves.
type Handlers struct {
	Inventory *handler.InventoryHandler
	Booking   *handler.BookingHandler
	Order     *handler.OrderHandler
	Payment   *handler.PaymentHandler
}

// New builds the engine.
// Middleware order: recovery, request log, metrics, then auth on /api/v1.
func New(cfg *config.Config, h Handlers, auth *middleware.AuthMiddleware, logger *zap.Logger) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})

	// http://localhost:8080/swagger/index.html
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.Use(auth.RequireAuth())
	{
		inventory := v1.Group("/inventory")
		{
			inventory.POST("", h.Inventory.AddStock)
			inventory.GET("/:product_id", h.Inventory.CheckAvailability)
			inventory.GET("/:product_id/logs", h.Inventory.ListLogs)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.POST("", h.Booking.CreateBooking)
			bookings.GET("/:id", h.Booking.GetBooking)
			bookings.POST("/:id/cancel", h.Booking.CancelBooking)
			bookings.GET("/:id/payments", h.Payment.ListPayments)
			bookings.POST("/:id/payments", h.Payment.AddPayment)
			bookings.PUT("/:id/payments", h.Payment.UpdatePayment)
			bookings.GET("/:id/refunds", h.Payment.ListRefunds)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", h.Order.CreateOrder)
			orders.GET("/:id", h.Order.GetOrder)
			orders.PUT("/:id", h.Order.UpdateOrder)
			orders.POST("/:id/dispatches", h.Order.RecordDispatch)
			orders.POST("/:id/returns", h.Order.RecordReturn)
		}

		refunds := v1.Group("/refunds")
		{
			refunds.POST("/:id/approve", h.Payment.ApproveRefund)
			refunds.POST("/:id/reject", h.Payment.RejectRefund)
		}
	}

	return r
}
