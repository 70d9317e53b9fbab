package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// observeLogs swaps the global logger for one that records entries
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logging.Logger
	logging.Logger = logging.New(zap.New(core))
	t.Cleanup(func() { logging.Logger = previous })
	return logs
}

func TestRequestLogger(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), RequestLogger())
	router.POST("/v1/identity/check", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"found": false}) })
	router.POST("/v1/otp/validate", func(c *gin.Context) {
		SetErrorCode(c, "incorrect_code")
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})
	router.POST("/v1/consent", func(c *gin.Context) {
		SetErrorCode(c, "internal_error")
		c.JSON(http.StatusInternalServerError, gin.H{})
	})

	tests := []struct {
		name      string
		path      string
		status    int
		level     zapcore.Level
		step      string
		errorCode string
	}{
		{"served", "/v1/identity/check", http.StatusOK, zapcore.InfoLevel, "identity", ""},
		{"rejected", "/v1/otp/validate", http.StatusNotFound, zapcore.WarnLevel, "otp_validate", "incorrect_code"},
		{"failed", "/v1/consent", http.StatusInternalServerError, zapcore.ErrorLevel, "consent", "internal_error"},
		{"unmatched route", "/v2/nothing", http.StatusNotFound, zapcore.WarnLevel, "unmatched", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)

			body := strings.NewReader(`{"cedula":"1234567890","code":"482913"}`)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, body))
			assert.Equal(t, tt.status, w.Code)

			entries := logs.All()
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, "http", entry.LoggerName)

			fields := entry.ContextMap()
			assert.Equal(t, tt.step, fields["step"])
			assert.Equal(t, w.Header().Get("X-Request-ID"), fields["request_id"])
			if tt.errorCode == "" {
				assert.NotContains(t, fields, "error_code")
			} else {
				assert.Equal(t, tt.errorCode, fields["error_code"])
			}
			for _, v := range fields {
				assert.NotContains(t, fmt.Sprint(v), "1234567890")
				assert.NotContains(t, fmt.Sprint(v), "482913")
			}
		})
	}
}

func TestRequestTracker(t *testing.T) {
	router := gin.New()
	router.Use(RequestTracker())

	var called atomic.Bool
	router.GET("/test", func(c *gin.Context) {
		called.Store(true)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.True(t, called.Load())
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestID_Generated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var seen string
	router.GET("/test", func(c *gin.Context) {
		seen = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.NotEmpty(t, seen)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name    string
		inbound string
		kept    bool
	}{
		{"kiosk id", "kiosk-7-abc", true},
		{"uuid", "3f2a1c9e-0b7d-4e55-9a61-2f5c8d0e7b14", true},
		{"newline injection", "kiosk-7\nlevel=error", false},
		{"spaces", "kiosk 7", false},
		{"too long", strings.Repeat("a", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Request-ID", tt.inbound)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if tt.kept {
				assert.Equal(t, tt.inbound, got)
			} else {
				assert.NotEqual(t, tt.inbound, got)
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/test", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.NotEqual(t, first.Header().Get("X-Request-ID"), second.Header().Get("X-Request-ID"))
}
