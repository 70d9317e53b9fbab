package utils

import (
	"context"
	"sync"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"go.uber.org/zap"
)

// AuditWriter persists a batch of audit entries
type AuditWriter interface {
	InsertAuditLogs(ctx context.Context, logs []models.AuditLog) error
}

const (
	auditBatchSize     = 100
	auditFlushInterval = 100 * time.Millisecond
	auditWriteTimeout  = 5 * time.Second
)

// sensitiveAuditKeys never reach the audit collection in clear text
var sensitiveAuditKeys = []string{"code", "signature", "password", "token", "secret"}

// AuditWorker batches audit entries and writes them off the request path
type AuditWorker struct {
	writer    AuditWriter
	auditChan chan models.AuditLog
	workers   int
	logger    *logging.SafeLogger
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditWorker creates a worker pool; call Start before Record
func NewAuditWorker(writer AuditWriter, workers, bufferSize int, logger *logging.SafeLogger) *AuditWorker {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &AuditWorker{
		writer:    writer,
		auditChan: make(chan models.AuditLog, bufferSize),
		workers:   workers,
		logger:    logger.Named("audit"),
		now:       time.Now,
	}
}

// Start launches the worker goroutines
func (aw *AuditWorker) Start() {
	aw.wg.Add(aw.workers)
	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	aw.logger.Info("audit worker started with batched processing",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

// Record queues an entry without blocking. When the buffer is full the
// entry is written synchronously instead.
func (aw *AuditWorker) Record(ctx context.Context, entry models.AuditLog) {
	if aw == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = aw.now().UTC()
	}
	entry.Metadata = SanitizeAuditMetadata(entry.Metadata)

	aw.mu.RLock()
	defer aw.mu.RUnlock()
	if aw.closed {
		aw.logger.Warn("audit worker stopped, dropping entry", zap.String("action", entry.Action))
		return
	}

	select {
	case aw.auditChan <- entry:
	default:
		aw.logger.Warn("audit channel full, falling back to synchronous write",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource))
		aw.flushBatch(context.WithoutCancel(ctx), []models.AuditLog{entry})
	}
}

// processAuditLogs drains the channel in batches
func (aw *AuditWorker) processAuditLogs() {
	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	batch := make([]models.AuditLog, 0, auditBatchSize)
	for {
		select {
		case entry, ok := <-aw.auditChan:
			if !ok {
				if len(batch) > 0 {
					aw.flushBatch(context.Background(), batch)
				}
				return
			}
			batch = append(batch, entry)
			if len(batch) >= auditBatchSize {
				aw.flushBatch(context.Background(), batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				aw.flushBatch(context.Background(), batch)
				batch = batch[:0]
			}
		}
	}
}

// flushBatch writes a batch; failures are logged and the batch dropped
func (aw *AuditWorker) flushBatch(ctx context.Context, batch []models.AuditLog) {
	ctx, cancel := context.WithTimeout(ctx, auditWriteTimeout)
	defer cancel()

	logs := make([]models.AuditLog, len(batch))
	copy(logs, batch)

	if err := aw.writer.InsertAuditLogs(ctx, logs); err != nil {
		aw.logger.Error("failed to insert audit log batch",
			zap.Error(err),
			zap.Int("batch_size", len(logs)))
		return
	}
	aw.logger.Debug("audit log batch inserted", zap.Int("batch_size", len(logs)))
}

// Stop flushes pending entries and waits for the workers to exit
func (aw *AuditWorker) Stop() {
	if aw == nil {
		return
	}
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return
	}
	aw.closed = true
	close(aw.auditChan)
	aw.mu.Unlock()

	aw.wg.Wait()
}

// AuditStats describes the worker pool and how full its buffer is
type AuditStats struct {
	Workers        int
	BufferCapacity int
	BufferUsage    int
}

// Stats reports the buffer state; a nil worker reports zeros
func (aw *AuditWorker) Stats() AuditStats {
	if aw == nil {
		return AuditStats{}
	}
	return AuditStats{
		Workers:        aw.workers,
		BufferCapacity: cap(aw.auditChan),
		BufferUsage:    len(aw.auditChan),
	}
}

// SanitizeAuditMetadata returns a copy with sensitive values redacted
func SanitizeAuditMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}
	sanitized := make(map[string]string, len(metadata))
	for k, v := range metadata {
		sanitized[k] = v
	}
	for _, key := range sensitiveAuditKeys {
		if _, exists := sanitized[key]; exists {
			sanitized[key] = "[REDACTED]"
		}
	}
	return sanitized
}
