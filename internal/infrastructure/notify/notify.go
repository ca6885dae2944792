// Package notify delivers committed-change events to the notification sink.
package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/pkg/circuitbreaker"
	"github.com/xiebiao/rental/pkg/metrics"
)

const breakerName = "notify"

// Publisher is the slice of mq.Publisher the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Exchange() string
}

// MQNotifier publishes events to RabbitMQ, routing key = event type.
// Design notes:
// 1. publishing happens after commit; a failure is logged and dropped
// 2. a circuit breaker stops calling a dead broker so requests don't pay the timeout
// 3. breaker state and outcomes are exported as metrics
type MQNotifier struct {
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
	logger    *zap.Logger
}

var _ port.Notifier = (*MQNotifier)(nil)

func NewMQNotifier(publisher Publisher, timeout time.Duration, logger *zap.Logger) *MQNotifier {
	breaker := circuitbreaker.NewCircuitBreaker(breakerName, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
		logger.Warn("notification breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": breakerName}, float64(circuitbreaker.StateClosed))

	return &MQNotifier{
		publisher: publisher,
		breaker:   breaker,
		timeout:   timeout,
		logger:    logger,
	}
}

func (n *MQNotifier) Notify(ctx context.Context, event port.Event) {
	// the request may finish before the broker answers
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	err := n.breaker.Execute(func() error {
		return n.publisher.Publish(ctx, event.Type, event)
	})

	result := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": breakerName, "result": result})

	if err != nil {
		n.logger.Warn("notification dropped",
			zap.String("event", event.Type),
			zap.String("result", result),
			zap.Error(err),
		)
		return
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    n.publisher.Exchange(),
		"routing_key": event.Type,
	})
}

// State exposes the breaker state for health output.
func (n *MQNotifier) State() circuitbreaker.State {
	return n.breaker.State()
}

// LogNotifier writes events to the log; used when no broker is configured.
type LogNotifier struct {
	logger *zap.Logger
}

var _ port.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event port.Event) {
	n.logger.Info("event",
		zap.String("type", event.Type),
		zap.Time("occurred_at", event.OccurredAt),
		zap.Any("payload", event.Payload),
	)
}
