package middleware

import (
	"strconv"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "RequestID"

// RequestLogger writes one line per request tagged with its kiosk step and
// records the request duration. Bodies are never logged since they carry
// cedulas, codes and signatures.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		step := KioskStep(route)

		fields := []zap.Field{
			zap.String("step", step),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		if route == "" {
			fields = append(fields, zap.String("path", c.Request.URL.Path))
		}
		if code := ErrorCode(c); code != "" {
			fields = append(fields, zap.String("error_code", code))
		}

		logger := observability.Logger().Named("http")
		switch {
		case status >= 500:
			logger.Error("kiosk request failed", fields...)
		case status >= 400:
			logger.Warn("kiosk request rejected", fields...)
		default:
			logger.Info("kiosk request served", fields...)
		}

		if route == "" {
			route = "unmatched"
		}
		observability.RequestDuration.WithLabelValues(
			route,
			c.Request.Method,
			strconv.Itoa(status),
		).Observe(latency.Seconds())
	}
}

// RequestTracker counts in-flight requests
func RequestTracker() gin.HandlerFunc {
	return func(c *gin.Context) {
		observability.ActiveConnections.Inc()
		defer observability.ActiveConnections.Dec()
		c.Next()
	}
}

const maxRequestIDLength = 64

// validRequestID accepts ids kiosks generate themselves ("kiosk-7-3f2a");
// anything else is replaced so it cannot forge log lines
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// RequestID reuses a well-formed X-Request-ID from the kiosk or generates one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
