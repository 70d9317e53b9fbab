package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
	"go.uber.org/zap"
)

const signaturePrefix = "signatures/"

// ConsentVerifier serves read-only consent lookups for operators
type ConsentVerifier struct {
	consents ConsentStore
	blobs    BlobStore
	auditor  Auditor
	logger   *logging.SafeLogger

	now func() time.Time
}

// NewConsentVerifier creates a verifier. auditor may be nil.
func NewConsentVerifier(consents ConsentStore, blobs BlobStore, auditor Auditor, logger *logging.SafeLogger) *ConsentVerifier {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &ConsentVerifier{
		consents: consents,
		blobs:    blobs,
		auditor:  auditor,
		logger:   logger.Named("consent_verifier"),
		now:      time.Now,
	}
}

// Verify returns a stored consent and whether it is active now
func (v *ConsentVerifier) Verify(ctx context.Context, id string) (*models.ConsentVerificationResponse, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "verify_consent")
	defer span.End()

	consent, err := v.consents.FindConsent(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		v.logger.Error("failed to load consent", zap.String("consent_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: find consent: %w", models.ErrStorage, err)
	}

	v.auditor.Record(ctx, auditEntry(ctx, models.AuditActionRead, models.AuditResourceConsent, consent.VisitorID, consent.ID.Hex(), nil))

	return &models.ConsentVerificationResponse{
		Consent: consent,
		Active:  consent.IsActive(v.now()),
	}, nil
}

// Signature returns a stored signature image. Only paths under
// signatures/ are served.
func (v *ConsentVerifier) Signature(ctx context.Context, blobPath string) ([]byte, error) {
	clean := path.Clean("/" + strings.TrimSpace(blobPath))[1:]
	if !strings.HasPrefix(clean, signaturePrefix) || len(clean) == len(signaturePrefix) {
		verr := models.NewValidationError()
		verr.Add("path", "must reference a signature")
		return nil, verr
	}

	data, err := v.blobs.Get(ctx, clean)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get signature: %w", models.ErrStorage, err)
	}
	return data, nil
}
