package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const errorCodeKey = "kiosk_error_code"

// SetErrorCode records the machine-readable code a handler answered with
func SetErrorCode(c *gin.Context, code string) {
	c.Set(errorCodeKey, code)
}

// ErrorCode returns the code set by SetErrorCode, empty on success
func ErrorCode(c *gin.Context) string {
	return c.GetString(errorCodeKey)
}

// KioskStep names the part of the kiosk flow a route belongs to
func KioskStep(route string) string {
	switch {
	case route == "":
		return "unmatched"
	case route == "/v1/identity/check":
		return "identity"
	case route == "/v1/otp/issue":
		return "otp_issue"
	case route == "/v1/otp/validate":
		return "otp_validate"
	case route == "/v1/consent":
		return "consent"
	case strings.HasPrefix(route, "/v1/admin/"):
		return "admin"
	default:
		return "ops"
	}
}

// RequestTiming opens one span per request named after its kiosk step so
// service and store spans nest under it
func RequestTiming() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		step := KioskStep(c.FullPath())

		ctx, span := otel.Tracer("kiosk/http").Start(c.Request.Context(), "kiosk."+step)
		span.SetAttributes(
			attribute.String("kiosk.step", step),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
			attribute.String("http.client_ip", c.ClientIP()),
			attribute.String("http.request_id", c.GetString(RequestIDKey)),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int64("http.duration_ms", time.Since(start).Milliseconds()),
		)
		if code := ErrorCode(c); code != "" {
			span.SetAttributes(attribute.String("kiosk.error_code", code))
		}
		if status >= 500 {
			span.SetStatus(codes.Error, ErrorCode(c))
		}
	}
}
