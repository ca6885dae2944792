//go:generate go tool swag init --dir ../../ --generalInfo cmd/api/main.go --output ../../docs

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/infrastructure/config"
	"github.com/xiebiao/rental/pkg/logger"
	"github.com/xiebiao/rental/pkg/metrics"
	"github.com/xiebiao/rental/pkg/tracing"
)

// @title           Rental Fulfillment API
// @version         1.0
// @description     Inventory reservation, booking to order conversion, dispatch/return tracking and payment reconciliation.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("config loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("mq", cfg.MQ.Enabled),
	)

	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			zl.Fatal("init tracer", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				zl.Warn("shutdown tracer", zap.Error(err))
			}
		}()
	}

	engine, cleanup, err := newApp(cfg, zl)
	if err != nil {
		zl.Fatal("init app", zap.Error(err))
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zl.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}
