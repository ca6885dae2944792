// Command events tails the notification exchange and logs every event.
// It is the reference consumer for order, inventory and refund events.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/infrastructure/config"
	"github.com/xiebiao/rental/pkg/logger"
	"github.com/xiebiao/rental/pkg/mq"
)

const queue = "rental.events.audit"

var routingKeys = []string{"inventory.*", "order.*", "refund.*"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.MQ.URL == "" {
		log.Fatal("mq.url is required")
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

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, queue, routingKeys, zl)
	if err != nil {
		zl.Fatal("connect mq", zap.Error(err))
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Consume(ctx, handle(zl)); err != nil {
		zl.Error("consume", zap.Error(err))
	}
}

// handle logs the event. Undecodable messages are logged and acked so they
// don't cycle through the queue forever.
func handle(zl *zap.Logger) func(ctx context.Context, d mq.Delivery) error {
	return func(_ context.Context, d mq.Delivery) error {
		var event struct {
			port.Event
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(d.Body, &event); err != nil {
			zl.Warn("undecodable event", zap.String("routing_key", d.RoutingKey), zap.Error(err))
			return nil
		}
		zl.Info("event received",
			zap.String("type", event.Type),
			zap.Time("occurred_at", event.OccurredAt),
			zap.ByteString("payload", event.Payload),
		)
		return nil
	}
}
