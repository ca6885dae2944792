package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/rental/pkg/tracing"
)

const (
	RequestIDHeader = "X-Request-ID"
	TraceIDHeader   = "X-Trace-ID"
	requestIDKey    = "request_id"
	tracerName      = "rental/http"

	slowRequest = 3 * time.Second
)

// Logger request log with a request id and the request span.
// An incoming X-Request-ID is kept so ids survive the proxy chain. The span
// rides on the request context, so use case spans become its children.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracing.StartSpan(c.Request.Context(), tracerName, c.Request.Method+" "+route)
		defer span.End()
		span.SetAttributes(attribute.String("request_id", requestID))
		c.Request = c.Request.WithContext(ctx)
		traceID := tracing.ExtractTraceID(ctx)
		if traceID != "" {
			c.Header(TraceIDHeader, traceID)
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		if c.Writer.Status() >= 500 {
			tracing.RecordError(span, fmt.Errorf("status %d", c.Writer.Status()))
		}

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if traceID != "" {
			fields = append(fields,
				zap.String("trace_id", traceID),
				zap.String("span_id", tracing.ExtractSpanID(ctx)),
			)
		}
		if uid := GetUserID(c); uid != 0 {
			fields = append(fields, zap.Uint("user_id", uid))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		case latency > slowRequest:
			logger.Warn("slow request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// GetRequestID returns "" outside the Logger middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
