package services

import (
	"context"
	"errors"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
)

type requestMetaKey struct{}

// RequestMeta identifies the kiosk request an operation runs for
type RequestMeta struct {
	IPAddress string
	RequestID string
}

// WithRequestMeta attaches request metadata used by the audit trail
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// OutcomeLabel maps an operation result to the label used by metrics, audit
// entries and API error codes
func OutcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrMissingContact):
		return "missing_contact"
	case errors.Is(err, models.ErrExpired):
		return "expired"
	case errors.Is(err, models.ErrIncorrectCode):
		return "incorrect_code"
	case errors.Is(err, models.ErrTooManyAttempts):
		return "too_many_attempts"
	case errors.Is(err, models.ErrDelivery):
		return "delivery_failed"
	case errors.Is(err, models.ErrStorage):
		return "storage_error"
	default:
		return "error"
	}
}

func auditEntry(ctx context.Context, action, resource, cedula, entityID string, err error) models.AuditLog {
	meta := requestMetaFrom(ctx)
	return models.AuditLog{
		Cedula:    cedula,
		Action:    action,
		Resource:  resource,
		EntityID:  entityID,
		IPAddress: meta.IPAddress,
		RequestID: meta.RequestID,
		Outcome:   OutcomeLabel(err),
	}
}
