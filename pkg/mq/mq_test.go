package mq

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testEvent struct {
	OrderID uint   `json:"order_id"`
	Action  string `json:"action"`
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(testEvent{OrderID: 7, Action: "created"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.False(t, msg.Timestamp.IsZero())

	var got testEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, testEvent{OrderID: 7, Action: "created"}, got)
}

func TestNewMessage_Unencodable(t *testing.T) {
	_, err := NewMessage(make(chan int))
	assert.Error(t, err)
}

// brokerURL returns the broker used by the round trip test, skipping when unset.
func brokerURL(t *testing.T) string {
	url := os.Getenv("RENTAL_TEST_AMQP_URL")
	if url == "" {
		t.Skip("RENTAL_TEST_AMQP_URL not set")
	}
	return url
}

func TestPublishConsume_RoundTrip(t *testing.T) {
	url := brokerURL(t)
	logger := zaptest.NewLogger(t)

	consumer, err := NewConsumer(url, "rental.test.events", "topic", "rental.test.queue", []string{"order.*"}, logger)
	require.NoError(t, err)
	defer consumer.Close()

	publisher, err := NewPublisher(url, "rental.test.events", "topic", logger)
	require.NoError(t, err)
	defer publisher.Close()

	require.NoError(t, publisher.Publish(context.Background(), "order.created", testEvent{OrderID: 1, Action: "created"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan Delivery, 1)
	go func() {
		_ = consumer.Consume(ctx, func(_ context.Context, d Delivery) error {
			received <- d
			cancel()
			return nil
		})
	}()

	select {
	case d := <-received:
		assert.Equal(t, "order.created", d.RoutingKey)
		var got testEvent
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, uint(1), got.OrderID)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}

	require.NoError(t, publisher.Close())
	assert.ErrorIs(t, publisher.Publish(context.Background(), "order.created", testEvent{}), ErrClosed)
}
