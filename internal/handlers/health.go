package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const healthProbeTimeout = 3 * time.Second

// HealthCheckFunc probes one dependency
type HealthCheckFunc func(ctx context.Context) error

// HealthHandlers probes every registered dependency concurrently
type HealthHandlers struct {
	checks map[string]HealthCheckFunc
	logger *logging.SafeLogger
}

// NewHealthHandlers creates the health handlers. An empty checks map always reports healthy.
func NewHealthHandlers(checks map[string]HealthCheckFunc, logger *logging.SafeLogger) *HealthHandlers {
	return &HealthHandlers{checks: checks, logger: logger}
}

// HealthCheck godoc
// @Summary Health check
// @Description Verifica la conexión con MongoDB y Redis
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string, len(h.checks)),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		check := h.checks[name]
		g.Go(func() error {
			pctx, span := utils.TraceExternalService(gctx, name, "ping")
			defer span.End()

			status := "healthy"
			if err := check(pctx); err != nil {
				utils.RecordErrorInSpan(span, err, attribute.String("peer.service", name))
				h.logger.Warn("dependency unhealthy", zap.String("service", name), zap.Error(err))
				status = "unhealthy"
			}

			mu.Lock()
			health.Services[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, status := range health.Services {
		if status != "healthy" {
			health.Status = "unhealthy"
		}
	}

	if health.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}
