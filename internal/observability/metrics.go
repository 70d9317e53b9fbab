package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "kiosk_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kiosk_active_connections",
			Help: "Number of active connections",
		},
	)

	// OtpIssued tracks code issuance by outcome
	OtpIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_otp_issued_total",
			Help: "Number of one-time code issuance attempts",
		},
		[]string{"outcome"},
	)

	// OtpValidations tracks code validation by outcome
	OtpValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_otp_validations_total",
			Help: "Number of one-time code validation attempts",
		},
		[]string{"outcome"},
	)

	// ConsentSubmissions tracks consent submissions by outcome
	ConsentSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_consent_submissions_total",
			Help: "Number of consent submissions",
		},
		[]string{"outcome"},
	)

	// AbsorbedFailures tracks post-commit side effects that failed without failing the request
	AbsorbedFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_absorbed_failures_total",
			Help: "Number of post-commit side effect failures",
		},
		[]string{"step"},
	)

	// StepDuration tracks the duration of each step of multi-step operations
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kiosk_step_duration_seconds",
			Help:    "Duration of individual operation steps in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"operation", "step"},
	)

	// DatabaseOperations tracks store operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_database_operations_total",
			Help: "Number of store operations",
		},
		[]string{"operation", "status"},
	)

	// CacheHits tracks visitor cache hits and misses
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_cache_hits_total",
			Help: "Number of visitor cache lookups",
		},
		[]string{"result"},
	)
)

// WatchAuditBuffer exports how full the audit buffer is at scrape time
func WatchAuditBuffer(reg prometheus.Registerer, stats func() (usage, capacity int)) {
	factory := promauto.With(reg)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kiosk_audit_buffer_usage",
		Help: "Audit entries waiting to be written",
	}, func() float64 {
		usage, _ := stats()
		return float64(usage)
	})
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kiosk_audit_buffer_capacity",
		Help: "Size of the audit entry buffer",
	}, func() float64 {
		_, capacity := stats()
		return float64(capacity)
	})
}

// WatchRedisPool exports Redis connection pool counts at scrape time
func WatchRedisPool(reg prometheus.Registerer, stats func() (total, idle uint32)) {
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kiosk_redis_pool_total_connections",
		Help: "Open connections in the Redis pool",
	}, func() float64 {
		total, _ := stats()
		return float64(total)
	})
	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kiosk_redis_pool_idle_connections",
		Help: "Idle connections in the Redis pool",
	}, func() float64 {
		_, idle := stats()
		return float64(idle)
	})
}
