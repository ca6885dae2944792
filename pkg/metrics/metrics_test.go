package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // second call must not panic on duplicate registration

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, OrdersFailedTotal)
	assert.NotNil(t, PaymentsTotal)
	assert.NotNil(t, CircuitBreakerState)
	assert.NotNil(t, MessagesPublishedTotal)
}

func TestCounter(t *testing.T) {
	InitMetrics()

	before := counterValue(t, OrdersCreatedTotal)
	IncCounter(OrdersCreatedTotal)
	IncCounter(OrdersCreatedTotal)
	AddCounter(OrdersCreatedTotal, 3)

	assert.Equal(t, before+5, counterValue(t, OrdersCreatedTotal))
}

func TestCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"stage": "order", "type": "debit"}
	before := counterValue(t, PaymentsTotal.With(labels))

	IncCounterVec(PaymentsTotal, labels)
	IncCounterVec(PaymentsTotal, map[string]string{"stage": "order", "type": "credit"})
	AddCounterVec(PaymentsTotal, labels, 2)

	assert.Equal(t, before+3, counterValue(t, PaymentsTotal.With(labels)))
}

func TestGauge(t *testing.T) {
	InitMetrics()

	SetGauge(OrdersInProgress, 0)
	IncGauge(OrdersInProgress)
	IncGauge(OrdersInProgress)
	DecGauge(OrdersInProgress)
	assert.Equal(t, float64(1), gaugeValue(t, OrdersInProgress))

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "notify"}, 1)
	assert.Equal(t, float64(1), gaugeValue(t, CircuitBreakerState.With(map[string]string{"name": "notify"})))
}

func TestHistogram(t *testing.T) {
	InitMetrics()

	before := histogramCount(t, OrderCreationDuration)
	ObserveHistogram(OrderCreationDuration, 0.02)
	ObserveHistogram(OrderCreationDuration, 0.3)
	assert.Equal(t, before+2, histogramCount(t, OrderCreationDuration))

	ObserveHistogramVec(HTTPRequestDuration, map[string]string{"method": "GET", "path": "/ping"}, 0.001)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, h.Write(m))
	return m.GetHistogram().GetSampleCount()
}
