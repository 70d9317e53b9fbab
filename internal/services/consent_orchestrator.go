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
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultPostCommitTimeout = 30 * time.Second

// ConsentConfig configures consent issuance
type ConsentConfig struct {
	PolicyVersion string
	PhoneRegion   string
	// PostCommitTimeout bounds rendering and notification after the consent is stored
	PostCommitTimeout time.Duration
}

// ConsentDeps are the collaborators of the ConsentOrchestrator.
// Publisher and Auditor may be nil.
type ConsentDeps struct {
	Identity  *IdentityResolver
	Visitors  IdentityStore
	Consents  ConsentStore
	Sequence  SequenceAllocator
	Blobs     BlobStore
	Renderer  PdfRenderer
	Notifier  Notifier
	Publisher EventPublisher
	Auditor   Auditor
}

// ConsentOrchestrator turns a signed kiosk form into a stored consent
type ConsentOrchestrator struct {
	deps   ConsentDeps
	cfg    ConsentConfig
	logger *logging.SafeLogger

	now func() time.Time
}

// NewConsentOrchestrator creates an orchestrator
func NewConsentOrchestrator(deps ConsentDeps, cfg ConsentConfig, logger *logging.SafeLogger) *ConsentOrchestrator {
	if deps.Publisher == nil {
		deps.Publisher = noopPublisher{}
	}
	if deps.Auditor == nil {
		deps.Auditor = noopAuditor{}
	}
	if cfg.PostCommitTimeout <= 0 {
		cfg.PostCommitTimeout = defaultPostCommitTimeout
	}
	return &ConsentOrchestrator{
		deps:   deps,
		cfg:    cfg,
		logger: logger.Named("consent"),
		now:    time.Now,
	}
}

// Submit validates the payload, stores the signature, merges the visitor
// profile, allocates a consecutivo and persists the consent. Once the
// consent is stored the call succeeds; rendering and notification failures
// are logged and absorbed.
func (o *ConsentOrchestrator) Submit(ctx context.Context, sub models.ConsentSubmission) (consent *models.Consent, err error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "submit_consent")
	defer span.End()

	timer := utils.NewStepTimer("submit_consent", o.logger)
	defer timer.End()

	defer func() {
		observability.ConsentSubmissions.WithLabelValues(OutcomeLabel(err)).Inc()
		if err != nil {
			utils.RecordErrorInSpan(span, err, attribute.String("outcome", OutcomeLabel(err)))
		}
	}()

	signedAt := o.now().UTC().Truncate(time.Millisecond)

	// 1. validate
	_, validateSpan := utils.TraceInputValidation(ctx, "consent_submission")
	payload, err := normalizeSubmission(sub, signedAt, o.cfg.PhoneRegion)
	validateSpan.End()
	timer.Mark("validate")
	if err != nil {
		o.logger.Info("consent submission rejected", zap.Error(err))
		return nil, err
	}

	cedula := payload.adult.Cedula
	logger := o.logger.With(zap.String("cedula", observability.MaskCedula(cedula)))

	// 2. signature
	signaturePath := fmt.Sprintf("signatures/%s/%d.png", cedula, signedAt.UnixMilli())
	blobCtx, blobSpan := utils.TraceExternalService(ctx, "blob_store", "put_signature")
	signatureURL, err := o.deps.Blobs.Put(blobCtx, signaturePath, payload.signature, "image/png")
	endStep(blobSpan, err)
	timer.Mark("signature")
	if err != nil {
		logger.Error("failed to store signature", zap.Error(err))
		return nil, fmt.Errorf("%w: store signature: %w", models.ErrStorage, err)
	}

	// 3. visitor profile
	visitorCtx, visitorSpan := utils.TraceEndpointStep(ctx, "upsert_visitor")
	_, err = o.deps.Visitors.UpsertVisitor(visitorCtx, models.VisitorUpsert{
		Cedula:   cedula,
		FullName: payload.adult.FullName,
		Email:    payload.adult.Email,
		Phone:    payload.adult.Phone,
		Address:  payload.adult.Address,
		Minors:   payload.minors,
	}, signedAt)
	endStep(visitorSpan, err)
	timer.Mark("visitor")
	if err != nil {
		logger.Error("failed to upsert visitor", zap.Error(err))
		return nil, fmt.Errorf("%w: upsert visitor: %w", models.ErrStorage, err)
	}
	if o.deps.Identity != nil {
		o.deps.Identity.Invalidate(ctx, cedula)
	}

	// 4. consecutivo
	seqCtx, seqSpan := utils.TraceEndpointStep(ctx, "allocate_consecutivo")
	consecutivo, err := o.deps.Sequence.NextConsecutivo(seqCtx)
	endStep(seqSpan, err)
	timer.Mark("consecutivo")
	if err != nil {
		logger.Error("failed to allocate consecutivo", zap.Error(err))
		return nil, fmt.Errorf("%w: allocate consecutivo: %w", models.ErrStorage, err)
	}

	// 5. consent
	consent = &models.Consent{
		Consecutivo:   consecutivo,
		VisitorID:     cedula,
		Adult:         payload.adult,
		Minors:        payload.minors,
		SignatureURL:  signatureURL,
		SignaturePath: signaturePath,
		PolicyVersion: o.cfg.PolicyVersion,
		IPAddress:     payload.ipAddress,
		SignedAt:      signedAt,
		ValidUntil:    signedAt.Add(models.ConsentValidity),
	}
	consentCtx, consentSpan := utils.TraceEndpointStep(ctx, "insert_consent")
	err = o.deps.Consents.InsertConsent(consentCtx, consent)
	endStep(consentSpan, err)
	timer.Mark("consent")
	if err != nil {
		logger.Error("failed to persist consent", zap.Error(err))
		return nil, fmt.Errorf("%w: persist consent: %w", models.ErrStorage, err)
	}

	logger = logger.With(
		zap.String("consent_id", consent.ID.Hex()),
		zap.Int64("consecutivo", consent.Consecutivo))
	logger.Info("consent stored")

	o.deps.Auditor.Record(ctx, auditEntry(ctx, models.AuditActionCreate, models.AuditResourceConsent, cedula, consent.ID.Hex(), nil))

	// The consent is valid from here on. The kiosk may disconnect but the
	// follow-up work still runs to completion.
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.PostCommitTimeout)
	defer cancel()

	o.publish(postCtx, logger, consent)
	timer.Mark("publish")

	pdf := o.render(postCtx, logger, consent, payload.signature)
	timer.Mark("render")

	o.notify(postCtx, logger, consent, pdf)
	timer.Mark("notify")

	return consent, nil
}

func (o *ConsentOrchestrator) publish(ctx context.Context, logger *logging.SafeLogger, consent *models.Consent) {
	event := models.ConsentEvent{
		Type:        models.ConsentEventIssued,
		ConsentID:   consent.ID.Hex(),
		Consecutivo: consent.Consecutivo,
		VisitorID:   consent.VisitorID,
		MinorCount:  len(consent.Minors),
		SignedAt:    consent.SignedAt,
		ValidUntil:  consent.ValidUntil,
	}
	if err := o.deps.Publisher.PublishConsentIssued(ctx, event); err != nil {
		observability.AbsorbedFailures.WithLabelValues("publish").Inc()
		logger.Warn("failed to publish consent event", zap.Error(err))
	}
}

// render returns nil when the certificate could not be produced
func (o *ConsentOrchestrator) render(ctx context.Context, logger *logging.SafeLogger, consent *models.Consent, signature []byte) []byte {
	if o.deps.Renderer == nil {
		return nil
	}
	ctx, span := utils.TraceEndpointStep(ctx, "render_pdf")
	pdf, err := o.deps.Renderer.RenderConsent(ctx, consent, signature)
	endStep(span, err)
	if err != nil {
		observability.AbsorbedFailures.WithLabelValues("render").Inc()
		logger.Error("failed to render consent certificate", zap.Error(fmt.Errorf("%w: %w", models.ErrRender, err)))
		return nil
	}
	return pdf
}

func (o *ConsentOrchestrator) notify(ctx context.Context, logger *logging.SafeLogger, consent *models.Consent, pdf []byte) {
	if o.deps.Notifier == nil {
		return
	}
	ctx, span := utils.TraceExternalService(ctx, "notifier", "send_consent")
	err := o.deps.Notifier.SendConsent(ctx, consent.Adult.Email, consent, pdf)
	endStep(span, err)
	if err != nil {
		observability.AbsorbedFailures.WithLabelValues("notify").Inc()
		logger.Error("failed to send consent email", zap.Error(fmt.Errorf("%w: %w", models.ErrDelivery, err)))
		return
	}
	logger.Info("consent email sent", zap.Bool("with_pdf", pdf != nil))
}

func endStep(span trace.Span, err error) {
	if err != nil {
		utils.RecordErrorInSpan(span, err)
	}
	span.End()
}
