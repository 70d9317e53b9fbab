package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// OtpValidator checks submitted codes and consumes them on success
type OtpValidator struct {
	identity    *IdentityResolver
	otps        OtpStore
	auditor     Auditor
	maxAttempts int
	logger      *logging.SafeLogger

	now func() time.Time
}

// NewOtpValidator creates a validator. auditor may be nil.
func NewOtpValidator(identity *IdentityResolver, otps OtpStore, auditor Auditor, cfg OtpConfig, logger *logging.SafeLogger) *OtpValidator {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &OtpValidator{
		identity:    identity,
		otps:        otps,
		auditor:     auditor,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger.Named("otp_validator"),
		now:         time.Now,
	}
}

// Validate checks code against the active record for the destination.
// A wrong code keeps the record; an expired one is deleted; a correct
// one is consumed. On success the visitor profile is returned when known.
func (s *OtpValidator) Validate(ctx context.Context, dest models.Destination, code string) (profile *models.VisitorProfile, err error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "validate_otp")
	defer span.End()

	defer func() {
		observability.OtpValidations.WithLabelValues(OutcomeLabel(err)).Inc()
		cedula := utils.NormalizeCedula(dest.Cedula)
		s.auditor.Record(ctx, auditEntry(ctx, models.AuditActionValidate, models.AuditResourceOtp, cedula, "", err))
		if err != nil {
			utils.RecordErrorInSpan(span, err, attribute.String("outcome", OutcomeLabel(err)))
		}
	}()

	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		verr := models.NewValidationError()
		verr.Add("code", "must be 6 digits")
		return nil, verr
	}

	resolved, err := s.resolve(ctx, dest)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(zap.String("email", observability.MaskEmail(resolved.email)))

	record, err := s.otps.Get(ctx, resolved.email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get code: %w", models.ErrStorage, err)
	}
	if resolved.cedula != "" && record.Cedula != "" && record.Cedula != resolved.cedula {
		return nil, models.ErrNotFound
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(record.Code)) != 1 {
		return nil, s.rejectCode(ctx, logger, resolved.email)
	}

	if record.Expired(s.now()) {
		if err := s.otps.Delete(ctx, resolved.email); err != nil {
			logger.Warn("failed to delete expired code", zap.Error(err))
		}
		return nil, models.ErrExpired
	}

	consumed, err := s.otps.Consume(ctx, resolved.email, code)
	if err != nil {
		return nil, fmt.Errorf("%w: consume code: %w", models.ErrStorage, err)
	}
	if !consumed {
		// lost a race against another validation or a reissue
		return nil, models.ErrNotFound
	}

	profile = resolved.profile
	if profile == nil && record.Cedula != "" {
		profile, err = s.identity.lookup(ctx, record.Cedula)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				logger.Warn("code accepted but profile lookup failed", zap.Error(err))
			}
			profile = nil
		}
	}

	logger.Info("code validated")
	return profile, nil
}

// resolve finds the email a code was issued to. When the cedula alone does
// not name an email (new visitor, or a profile without one) the code was
// bound to the email given at issue time, found through the cedula stored
// with it.
func (s *OtpValidator) resolve(ctx context.Context, dest models.Destination) (*destination, error) {
	resolved, err := s.identity.resolveDestination(ctx, dest)
	if err == nil || !(errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrMissingContact)) {
		return resolved, err
	}

	cedula := utils.NormalizeCedula(dest.Cedula)
	record, lookupErr := s.otps.FindByCedula(ctx, cedula)
	if lookupErr != nil {
		if errors.Is(lookupErr, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: find code by cedula: %w", models.ErrStorage, lookupErr)
	}
	return &destination{email: record.Email, cedula: cedula}, nil
}

func (s *OtpValidator) rejectCode(ctx context.Context, logger *logging.SafeLogger, email string) error {
	attempts, err := s.otps.IncrementAttempts(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Warn("failed to count attempt", zap.Error(err))
		}
		return models.ErrIncorrectCode
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("otp.attempts", attempts))

	if s.maxAttempts > 0 && attempts >= s.maxAttempts {
		if err := s.otps.Delete(ctx, email); err != nil {
			logger.Warn("failed to delete locked code", zap.Error(err))
		}
		logger.Warn("code locked after too many attempts", zap.Int("attempts", attempts))
		return models.ErrTooManyAttempts
	}

	logger.Info("incorrect code", zap.Int("attempts", attempts))
	return models.ErrIncorrectCode
}
