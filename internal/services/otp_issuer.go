package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OtpConfig controls code lifetime and lockout
type OtpConfig struct {
	TTL time.Duration
	// MaxAttempts deletes a record after that many wrong codes; 0 disables the lockout
	MaxAttempts int
}

// OtpIssuer generates, stores and delivers one-time codes
type OtpIssuer struct {
	identity *IdentityResolver
	otps     OtpStore
	notifier Notifier
	auditor  Auditor
	ttl      time.Duration
	logger   *logging.SafeLogger

	now      func() time.Time
	generate func() (string, error)
}

// NewOtpIssuer creates an issuer. auditor may be nil.
func NewOtpIssuer(identity *IdentityResolver, otps OtpStore, notifier Notifier, auditor Auditor, cfg OtpConfig, logger *logging.SafeLogger) *OtpIssuer {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = models.DefaultOtpTTL
	}
	return &OtpIssuer{
		identity: identity,
		otps:     otps,
		notifier: notifier,
		auditor:  auditor,
		ttl:      ttl,
		logger:   logger.Named("otp_issuer"),
		now:      time.Now,
		generate: utils.GenerateCode,
	}
}

// Issue sends a fresh code to the destination's email, replacing any
// previous code. It returns the masked email the code was sent to.
// A delivery failure leaves the stored code in place.
func (s *OtpIssuer) Issue(ctx context.Context, dest models.Destination) (masked string, err error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "issue_otp")
	defer span.End()

	var resolved *destination
	defer func() {
		observability.OtpIssued.WithLabelValues(OutcomeLabel(err)).Inc()
		cedula := utils.NormalizeCedula(dest.Cedula)
		s.auditor.Record(ctx, auditEntry(ctx, models.AuditActionIssue, models.AuditResourceOtp, cedula, "", err))
		if err != nil {
			utils.RecordErrorInSpan(span, err, attribute.String("outcome", OutcomeLabel(err)))
		}
	}()

	resolved, err = s.identity.resolveDestination(ctx, dest)
	if err != nil {
		return "", err
	}

	logger := s.logger.With(zap.String("email", observability.MaskEmail(resolved.email)))

	code, err := s.generate()
	if err != nil {
		logger.Error("failed to generate code", zap.Error(err))
		return "", fmt.Errorf("generate code: %w", err)
	}

	now := s.now().UTC()
	record := &models.OtpRecord{
		Email:     resolved.email,
		Cedula:    resolved.cedula,
		Code:      code,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	storeCtx, storeSpan := utils.TraceEndpointStep(ctx, "store_otp")
	err = s.otps.Put(storeCtx, record)
	storeSpan.End()
	if err != nil {
		logger.Error("failed to store code", zap.Error(err))
		return "", fmt.Errorf("%w: store code: %w", models.ErrStorage, err)
	}

	sendCtx, sendSpan := utils.TraceExternalService(ctx, "notifier", "send_code")
	err = s.notifier.SendCode(sendCtx, resolved.email, code, s.ttl)
	sendSpan.End()
	if err != nil {
		logger.Error("failed to deliver code", zap.Error(err))
		return "", fmt.Errorf("%w: %w", models.ErrDelivery, err)
	}

	logger.Info("code issued", zap.Time("expires_at", record.ExpiresAt))
	return observability.MaskEmail(resolved.email), nil
}
