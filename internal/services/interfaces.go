package services

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks github.com/Numffy/jumping-park-app-sub000/internal/services Notifier,PdfRenderer,EventPublisher

import (
	"context"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
)

// IdentityStore holds visitor profiles keyed by cedula
type IdentityStore interface {
	// FindByCedula returns models.ErrNotFound when no profile exists
	FindByCedula(ctx context.Context, cedula string) (*models.VisitorProfile, error)
	// UpsertVisitor merges the submitted fields into the profile, creating it if needed
	UpsertVisitor(ctx context.Context, upsert models.VisitorUpsert, now time.Time) (*models.VisitorProfile, error)
}

// OtpStore holds at most one active code per email
type OtpStore interface {
	// Put overwrites any record for record.Email
	Put(ctx context.Context, record *models.OtpRecord) error
	// Get returns models.ErrNotFound when no record exists
	Get(ctx context.Context, email string) (*models.OtpRecord, error)
	// FindByCedula returns the latest record issued for a cedula
	FindByCedula(ctx context.Context, cedula string) (*models.OtpRecord, error)
	// IncrementAttempts bumps the attempt counter and returns the new value
	IncrementAttempts(ctx context.Context, email string) (int, error)
	// Consume deletes the record only if it still holds code
	Consume(ctx context.Context, email, code string) (bool, error)
	Delete(ctx context.Context, email string) error
}

// ConsentStore persists consents. InsertConsent sets consent.ID.
type ConsentStore interface {
	InsertConsent(ctx context.Context, consent *models.Consent) error
	FindConsent(ctx context.Context, id string) (*models.Consent, error)
}

// SequenceAllocator hands out unique, increasing consecutivos
type SequenceAllocator interface {
	NextConsecutivo(ctx context.Context) (int64, error)
}

// BlobStore stores signature images
type BlobStore interface {
	// Put stores data under path and returns its retrieval URL
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
}

// Notifier delivers messages to visitors
type Notifier interface {
	SendCode(ctx context.Context, email, code string, ttl time.Duration) error
	// SendConsent sends the consent confirmation; pdf may be nil
	SendConsent(ctx context.Context, email string, consent *models.Consent, pdf []byte) error
}

// PdfRenderer renders the consent certificate
type PdfRenderer interface {
	RenderConsent(ctx context.Context, consent *models.Consent, signature []byte) ([]byte, error)
}

// EventPublisher announces consent lifecycle events
type EventPublisher interface {
	PublishConsentIssued(ctx context.Context, event models.ConsentEvent) error
}

// VisitorCache is a read-through cache in front of the IdentityStore.
// Get returns (nil, nil) on a miss.
type VisitorCache interface {
	Get(ctx context.Context, cedula string) (*models.VisitorProfile, error)
	Set(ctx context.Context, profile *models.VisitorProfile) error
	Invalidate(ctx context.Context, cedula string) error
}

// Auditor records audit trail entries without blocking
type Auditor interface {
	Record(ctx context.Context, entry models.AuditLog)
}

type noopAuditor struct{}

func (noopAuditor) Record(context.Context, models.AuditLog) {}

type noopPublisher struct{}

func (noopPublisher) PublishConsentIssued(context.Context, models.ConsentEvent) error { return nil }
