package notify

import (
	"context"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"go.uber.org/zap"
)

// Log writes notifications to the logger instead of sending them. It is
// used when email delivery is disabled, so codes are only visible at debug
// level.
type Log struct {
	logger *logging.SafeLogger
}

// NewLog creates a logging notifier
func NewLog(logger *logging.SafeLogger) *Log {
	return &Log{logger: logger.Named("notify")}
}

func (l *Log) SendCode(_ context.Context, email, code string, ttl time.Duration) error {
	l.logger.Info("email delivery disabled, code not sent",
		zap.String("email", observability.MaskEmail(email)),
		zap.Duration("ttl", ttl))
	l.logger.Debug("issued code", zap.String("email", email), zap.String("code", code))
	return nil
}

func (l *Log) SendConsent(_ context.Context, email string, consent *models.Consent, pdf []byte) error {
	l.logger.Info("email delivery disabled, consent confirmation not sent",
		zap.String("email", observability.MaskEmail(email)),
		zap.Int64("consecutivo", consent.Consecutivo),
		zap.Int("pdf_bytes", len(pdf)))
	return nil
}
