package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/rental/pkg/tracing"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return recorder
}

func newLoggedEngine(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/orders/:id", func(c *gin.Context) {
		_, span := tracing.StartSpan(c.Request.Context(), "test", "GetOrder")
		span.End()
		c.Status(http.StatusOK)
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func TestLogger_TraceCorrelation(t *testing.T) {
	recorder := useRecorder(t)
	core, logs := observer.New(zapcore.InfoLevel)
	r := newLoggedEngine(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/orders/7", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	child, root := spans[0], spans[1]
	assert.Equal(t, "GET /orders/:id", root.Name())
	assert.Equal(t, root.SpanContext().SpanID(), child.Parent().SpanID(), "handler span nests under the request span")

	traceID := root.SpanContext().TraceID().String()
	assert.Equal(t, traceID, w.Header().Get(TraceIDHeader))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, traceID, fields["trace_id"])
	assert.Equal(t, root.SpanContext().SpanID().String(), fields["span_id"])
}

func TestLogger_ServerErrorMarksSpan(t *testing.T) {
	recorder := useRecorder(t)
	core, logs := observer.New(zapcore.InfoLevel)
	r := newLoggedEngine(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader), "generated when absent")
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestLogger_NoTracerNoTraceID(t *testing.T) {
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(noop.NewTracerProvider())
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	core, logs := observer.New(zapcore.InfoLevel)
	r := newLoggedEngine(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/1", nil))

	assert.Empty(t, w.Header().Get(TraceIDHeader))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].ContextMap(), "trace_id")
}
