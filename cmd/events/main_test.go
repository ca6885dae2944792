package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/pkg/mq"
)

func TestHandle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := handle(zap.New(core))

	body, err := json.Marshal(port.NewEvent(port.EventOrderDelivered, map[string]uint{"order_id": 3}))
	require.NoError(t, err)

	require.NoError(t, h(context.Background(), mq.Delivery{RoutingKey: port.EventOrderDelivered, Body: body}))
	require.NoError(t, h(context.Background(), mq.Delivery{RoutingKey: "order.created", Body: []byte("{")}))

	received := logs.FilterMessage("event received").All()
	require.Len(t, received, 1)
	assert.Equal(t, port.EventOrderDelivered, received[0].ContextMap()["type"])
	assert.Equal(t, `{"order_id":3}`, received[0].ContextMap()["payload"])
	assert.Equal(t, 1, logs.FilterMessage("undecodable event").Len())
}
