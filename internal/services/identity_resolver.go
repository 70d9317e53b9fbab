package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// IdentityResolver looks up visitor profiles by cedula, reading through an
// optional cache.
type IdentityResolver struct {
	store  IdentityStore
	cache  VisitorCache
	logger *logging.SafeLogger
}

// NewIdentityResolver creates a resolver. cache may be nil.
func NewIdentityResolver(store IdentityStore, cache VisitorCache, logger *logging.SafeLogger) *IdentityResolver {
	return &IdentityResolver{
		store:  store,
		cache:  cache,
		logger: logger.Named("identity"),
	}
}

// Resolve returns the profile for cedula or models.ErrNotFound
func (r *IdentityResolver) Resolve(ctx context.Context, cedula string) (*models.VisitorProfile, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "resolve_identity")
	defer span.End()

	cedula = utils.NormalizeCedula(cedula)
	if !utils.IsValidCedula(cedula) {
		verr := models.NewValidationError()
		verr.Add("cedula", "must contain 6 to 10 digits")
		return nil, verr
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, cedula)
		switch {
		case err != nil:
			observability.CacheHits.WithLabelValues("error").Inc()
			r.logger.Warn("visitor cache read failed, falling back to store",
				zap.String("cedula", observability.MaskCedula(cedula)),
				zap.Error(err))
		case cached != nil:
			observability.CacheHits.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			observability.CacheHits.WithLabelValues("miss").Inc()
		}
	}

	profile, err := r.lookup(ctx, cedula)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, profile); err != nil {
			r.logger.Warn("failed to cache visitor",
				zap.String("cedula", observability.MaskCedula(cedula)),
				zap.Error(err))
		}
	}

	return profile, nil
}

// lookup reads the profile from the store, never the cache. Anything that
// decides where a code goes uses this: a cached profile can outlive an email
// change made by a consent submission.
func (r *IdentityResolver) lookup(ctx context.Context, cedula string) (*models.VisitorProfile, error) {
	profile, err := r.store.FindByCedula(ctx, cedula)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		utils.RecordErrorInSpan(trace.SpanFromContext(ctx), err, attribute.String("db.operation", "find_visitor"))
		return nil, fmt.Errorf("%w: find visitor: %w", models.ErrStorage, err)
	}
	return profile, nil
}

// Check reports whether a visitor exists, exposing only masked contact data
func (r *IdentityResolver) Check(ctx context.Context, cedula string) (*models.IdentityCheckResponse, error) {
	profile, err := r.Resolve(ctx, cedula)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &models.IdentityCheckResponse{Exists: false}, nil
		}
		return nil, err
	}

	return &models.IdentityCheckResponse{Exists: true, Profile: MaskProfile(profile)}, nil
}

// Invalidate drops a cached profile. Errors are logged only.
func (r *IdentityResolver) Invalidate(ctx context.Context, cedula string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, cedula); err != nil {
		r.logger.Warn("failed to invalidate visitor cache",
			zap.String("cedula", observability.MaskCedula(cedula)),
			zap.Error(err))
	}
}

// MaskProfile returns the subset of a profile safe to show before verification
func MaskProfile(profile *models.VisitorProfile) *models.MaskedProfile {
	if profile == nil {
		return nil
	}
	masked := &models.MaskedProfile{
		Cedula:     profile.Cedula,
		FullName:   profile.FullName,
		MinorCount: len(profile.Minors),
	}
	if profile.Email != "" {
		masked.Email = observability.MaskEmail(profile.Email)
	}
	if profile.Phone != "" {
		masked.Phone = observability.MaskPhone(profile.Phone)
	}
	return masked
}

// destination is a resolved code destination
type destination struct {
	email   string
	cedula  string
	profile *models.VisitorProfile
}

// resolveDestination turns a cedula and/or email into the email a code is
// bound to. A known cedula always wins over the supplied email.
func (r *IdentityResolver) resolveDestination(ctx context.Context, dest models.Destination) (*destination, error) {
	cedula := utils.NormalizeCedula(dest.Cedula)
	email := utils.NormalizeEmail(dest.Email)

	verr := models.NewValidationError()
	if cedula == "" && email == "" {
		verr.Add("cedula", "cedula or email is required")
		return nil, verr
	}
	if cedula != "" && !utils.IsValidCedula(cedula) {
		verr.Add("cedula", "must contain 6 to 10 digits")
	}
	if email != "" && !utils.IsValidEmail(email) {
		verr.Add("email", "invalid email address")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if cedula == "" {
		return &destination{email: email}, nil
	}

	profile, err := r.lookup(ctx, cedula)
	switch {
	case err == nil:
		target := utils.NormalizeEmail(profile.Email)
		if target == "" {
			target = email
		}
		if target == "" {
			return nil, models.ErrMissingContact
		}
		return &destination{email: target, cedula: cedula, profile: profile}, nil
	case errors.Is(err, models.ErrNotFound):
		if email == "" {
			return nil, models.ErrNotFound
		}
		return &destination{email: email, cedula: cedula}, nil
	default:
		return nil, err
	}
}
