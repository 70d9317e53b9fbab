package utils

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu      sync.Mutex
	logs    []models.AuditLog
	batches int
	err     error
}

func (w *recordingWriter) InsertAuditLogs(_ context.Context, logs []models.AuditLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batches++
	if w.err != nil {
		return w.err
	}
	w.logs = append(w.logs, logs...)
	return nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.logs)
}

func TestAuditWorker_FlushesOnStop(t *testing.T) {
	writer := &recordingWriter{}
	worker := NewAuditWorker(writer, 2, 16, logging.Logger)
	worker.Start()

	for i := 0; i < 10; i++ {
		worker.Record(context.Background(), models.AuditLog{
			Action:   models.AuditActionIssue,
			Resource: models.AuditResourceOtp,
			Outcome:  "success",
		})
	}
	worker.Stop()

	assert.Equal(t, 10, writer.count())
	for _, entry := range writer.logs {
		assert.False(t, entry.Timestamp.IsZero())
	}
}

func TestAuditWorker_FlushesOnTicker(t *testing.T) {
	writer := &recordingWriter{}
	worker := NewAuditWorker(writer, 1, 16, logging.Logger)
	worker.Start()
	defer worker.Stop()

	worker.Record(context.Background(), models.AuditLog{Action: models.AuditActionCreate})

	assert.Eventually(t, func() bool { return writer.count() == 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestAuditWorker_SynchronousFallbackWhenFull(t *testing.T) {
	writer := &recordingWriter{}
	// Not started: the single buffer slot fills and the second entry is written inline
	worker := NewAuditWorker(writer, 1, 1, logging.Logger)

	worker.Record(context.Background(), models.AuditLog{Action: "first"})
	worker.Record(context.Background(), models.AuditLog{Action: "second"})

	require.Equal(t, 1, writer.count())
	assert.Equal(t, "second", writer.logs[0].Action)

	worker.Start()
	worker.Stop()
	assert.Equal(t, 2, writer.count())
}

func TestAuditWorker_RecordAfterStopIsDropped(t *testing.T) {
	writer := &recordingWriter{}
	worker := NewAuditWorker(writer, 1, 4, logging.Logger)
	worker.Start()
	worker.Stop()

	assert.NotPanics(t, func() {
		worker.Record(context.Background(), models.AuditLog{Action: "late"})
	})
	worker.Stop()
	assert.Equal(t, 0, writer.count())
}

func TestAuditWorker_WriterErrorIsAbsorbed(t *testing.T) {
	writer := &recordingWriter{err: errors.New("mongo down")}
	worker := NewAuditWorker(writer, 1, 4, logging.Logger)
	worker.Start()

	worker.Record(context.Background(), models.AuditLog{Action: "x"})
	worker.Stop()

	assert.Equal(t, 1, writer.batches)
	assert.Equal(t, 0, writer.count())
}

func TestAuditWorker_NilSafe(t *testing.T) {
	var worker *AuditWorker
	assert.NotPanics(t, func() {
		worker.Record(context.Background(), models.AuditLog{})
		worker.Stop()
	})
	assert.Equal(t, AuditStats{}, worker.Stats())
}

func TestAuditWorker_Stats(t *testing.T) {
	worker := NewAuditWorker(&recordingWriter{}, 3, 8, logging.Logger)
	assert.Equal(t, AuditStats{Workers: 3, BufferCapacity: 8}, worker.Stats())

	worker.Record(context.Background(), models.AuditLog{Action: "otp.issue"})
	assert.Equal(t, 1, worker.Stats().BufferUsage)
}

func TestSanitizeAuditMetadata(t *testing.T) {
	original := map[string]string{"code": "123456", "email": "j***@example.com", "signature": "iVBOR..."}

	sanitized := SanitizeAuditMetadata(original)

	assert.Equal(t, "[REDACTED]", sanitized["code"])
	assert.Equal(t, "[REDACTED]", sanitized["signature"])
	assert.Equal(t, "j***@example.com", sanitized["email"])
	assert.Equal(t, "123456", original["code"], "input map must not be mutated")
	assert.Nil(t, SanitizeAuditMetadata(nil))
}
