package main

import (
	"context"
	"fmt"

	"github.com/Numffy/jumping-park-app-sub000/internal/blob"
	"github.com/Numffy/jumping-park-app-sub000/internal/config"
	"github.com/Numffy/jumping-park-app-sub000/internal/events"
	"github.com/Numffy/jumping-park-app-sub000/internal/handlers"
	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/notify"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/Numffy/jumping-park-app-sub000/internal/pdf"
	"github.com/Numffy/jumping-park-app-sub000/internal/services"
	"github.com/Numffy/jumping-park-app-sub000/internal/store/memory"
	"github.com/Numffy/jumping-park-app-sub000/internal/store/mongostore"
	"github.com/Numffy/jumping-park-app-sub000/internal/store/redisstore"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// backends are the storage capabilities selected by configuration
type backends struct {
	visitors services.IdentityStore
	otps     services.OtpStore
	consents services.ConsentStore
	sequence services.SequenceAllocator
	blobs    services.BlobStore
	cache    services.VisitorCache
	audit    utils.AuditWriter

	healthChecks map[string]handlers.HealthCheckFunc
}

func openBackends(cfg *config.Config, logger *logging.SafeLogger) (*backends, error) {
	if cfg.StorageBackend == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		consents := memory.NewConsents()
		return &backends{
			visitors:     memory.NewVisitors(),
			otps:         memory.NewOtps(),
			consents:     consents,
			sequence:     consents,
			blobs:        blob.NewMemory(cfg.PublicBaseURL),
			audit:        memory.NewAuditLogs(),
			healthChecks: map[string]handlers.HealthCheckFunc{},
		}, nil
	}

	if err := config.InitMongoDB(); err != nil {
		return nil, err
	}
	config.InitRedis()
	observability.WatchRedisPool(prometheus.DefaultRegisterer, func() (uint32, uint32) {
		stats := config.Redis.PoolStats()
		return stats.TotalConns, stats.IdleConns
	})

	store := mongostore.New(config.MongoDB, mongostore.Collections{
		Visitors:  cfg.VisitorCollection,
		Otps:      cfg.OtpCollection,
		Consents:  cfg.ConsentCollection,
		Counters:  cfg.CounterCollection,
		AuditLogs: cfg.AuditLogCollection,
	})

	b := &backends{
		visitors: store,
		otps:     store.Otps(),
		consents: store,
		sequence: store,
		audit:    store,
		healthChecks: map[string]handlers.HealthCheckFunc{
			"mongodb": store.Ping,
			"redis": func(ctx context.Context) error {
				return config.Redis.Ping(ctx).Err()
			},
		},
	}

	if cfg.OtpStore == "redis" {
		b.otps = redisstore.NewOtps(config.Redis)
	}
	if cfg.VisitorCacheTTL > 0 {
		b.cache = redisstore.NewVisitorCache(config.Redis, cfg.VisitorCacheTTL)
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return nil, err
	}
	b.blobs = blobs
	return b, nil
}

func newBlobStore(cfg *config.Config) (services.BlobStore, error) {
	switch cfg.BlobBackend {
	case "cloudinary":
		return blob.NewCloudinary(cfg.CloudinaryURL)
	case "memory":
		return blob.NewMemory(cfg.PublicBaseURL), nil
	default:
		gfs, err := blob.NewGridFS(config.MongoDB, cfg.GridFSBucket, cfg.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open signature bucket: %w", err)
		}
		return gfs, nil
	}
}

// startAuditWorker returns nil when audit logging is disabled; a nil worker discards entries
func startAuditWorker(cfg *config.Config, writer utils.AuditWriter, logger *logging.SafeLogger) *utils.AuditWorker {
	if !cfg.AuditLogsEnabled {
		return nil
	}
	worker := utils.NewAuditWorker(writer, cfg.AuditWorkerCount, cfg.AuditBufferSize, logger)
	worker.Start()
	observability.WatchAuditBuffer(prometheus.DefaultRegisterer, func() (int, int) {
		stats := worker.Stats()
		return stats.BufferUsage, stats.BufferCapacity
	})
	return worker
}

// newPublisher returns nil without a broker; a nil publisher skips every event
func newPublisher(cfg *config.Config, logger *logging.SafeLogger) *events.KafkaPublisher {
	if cfg.KafkaBroker == "" {
		logger.Info("kafka broker not configured, consent events are disabled")
		return nil
	}
	logger.Info("publishing consent events", zap.String("topic", cfg.KafkaTopic))
	return events.NewKafkaPublisher(events.KafkaConfig{
		Broker:   cfg.KafkaBroker,
		Topic:    cfg.KafkaTopic,
		Username: cfg.KafkaUsername,
		Password: cfg.KafkaPassword,
	}, logger)
}

func newNotifier(cfg *config.Config, logger *logging.SafeLogger) (services.Notifier, error) {
	if !cfg.NotificationsEnabled {
		return notify.NewLog(logger), nil
	}
	return notify.NewSMTP(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
		ParkName: cfg.ParkName,
	}, logger)
}

func newRenderer(cfg *config.Config, logger *logging.SafeLogger) services.PdfRenderer {
	return pdf.NewRenderer(pdf.Config{ParkName: cfg.ParkName, LogoPath: cfg.LogoPath}, logger)
}
