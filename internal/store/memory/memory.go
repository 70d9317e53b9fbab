// Package memory provides in-process implementations of the kiosk stores.
// They back the STORAGE_BACKEND=memory development mode and the service tests.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errDuplicateConsecutivo = errors.New("duplicate consecutivo")

// Visitors is an in-memory IdentityStore
type Visitors struct {
	mu       sync.RWMutex
	visitors map[string]models.VisitorProfile
}

// NewVisitors creates an empty visitor store
func NewVisitors() *Visitors {
	return &Visitors{visitors: make(map[string]models.VisitorProfile)}
}

func copyProfile(p models.VisitorProfile) *models.VisitorProfile {
	p.Minors = slices.Clone(p.Minors)
	return &p
}

// FindByCedula returns a copy of the stored profile
func (s *Visitors) FindByCedula(_ context.Context, cedula string) (*models.VisitorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.visitors[cedula]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyProfile(p), nil
}

// UpsertVisitor merges the submission into the profile
func (s *Visitors) UpsertVisitor(_ context.Context, upsert models.VisitorUpsert, now time.Time) (*models.VisitorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.visitors[upsert.Cedula]
	if !ok {
		p = models.VisitorProfile{
			ID:        primitive.NewObjectID(),
			Cedula:    upsert.Cedula,
			CreatedAt: now,
		}
	}
	p.FullName = upsert.FullName
	p.Email = upsert.Email
	p.Phone = upsert.Phone
	if upsert.Address != "" {
		p.Address = upsert.Address
	}
	p.Minors = slices.Clone(upsert.Minors)
	if p.Minors == nil {
		p.Minors = []models.MinorRecord{}
	}
	p.UpdatedAt = now

	s.visitors[upsert.Cedula] = p
	return copyProfile(p), nil
}

// Otps is an in-memory OtpStore
type Otps struct {
	mu   sync.Mutex
	otps map[string]models.OtpRecord
}

// NewOtps creates an empty code store
func NewOtps() *Otps {
	return &Otps{otps: make(map[string]models.OtpRecord)}
}

// Put overwrites the record for record.Email
func (s *Otps) Put(_ context.Context, record *models.OtpRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	s.otps[record.Email] = stored
	return nil
}

// Get returns a copy of the record for email
func (s *Otps) Get(_ context.Context, email string) (*models.OtpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.otps[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

// FindByCedula returns the most recently issued record for cedula
func (s *Otps) FindByCedula(_ context.Context, cedula string) (*models.OtpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.OtpRecord
	for _, r := range s.otps {
		if r.Cedula != cedula {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			r := r
			latest = &r
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}

// IncrementAttempts bumps the attempt counter of an existing record
func (s *Otps) IncrementAttempts(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.otps[email]
	if !ok {
		return 0, models.ErrNotFound
	}
	r.Attempts++
	s.otps[email] = r
	return r.Attempts, nil
}

// Consume deletes the record only while it still holds code
func (s *Otps) Consume(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.otps[email]
	if !ok || r.Code != code {
		return false, nil
	}
	delete(s.otps, email)
	return true, nil
}

// Delete removes the record for email, if any
func (s *Otps) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.otps, email)
	return nil
}

// Consents is an in-memory ConsentStore and SequenceAllocator
type Consents struct {
	mu       sync.RWMutex
	consents map[primitive.ObjectID]models.Consent
	order    []primitive.ObjectID
	seq      int64
}

// NewConsents creates an empty consent store
func NewConsents() *Consents {
	return &Consents{consents: make(map[primitive.ObjectID]models.Consent)}
}

// NextConsecutivo returns the next sequence value, starting at 1
func (s *Consents) NextConsecutivo(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	return s.seq, nil
}

// InsertConsent stores the consent and assigns its ID
func (s *Consents) InsertConsent(_ context.Context, consent *models.Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.consents {
		if existing.Consecutivo == consent.Consecutivo {
			return errDuplicateConsecutivo
		}
	}

	consent.ID = primitive.NewObjectID()
	stored := *consent
	stored.Minors = slices.Clone(consent.Minors)
	s.consents[consent.ID] = stored
	s.order = append(s.order, consent.ID)
	return nil
}

// FindConsent returns the consent with the given hex id
func (s *Consents) FindConsent(_ context.Context, id string) (*models.Consent, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.consents[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	c.Minors = slices.Clone(c.Minors)
	return &c, nil
}

// All returns every stored consent in insertion order
func (s *Consents) All() []models.Consent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Consent, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.consents[id])
	}
	return out
}

// AuditLogs is an in-memory audit trail writer
type AuditLogs struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

// NewAuditLogs creates an empty audit trail
func NewAuditLogs() *AuditLogs {
	return &AuditLogs{}
}

// InsertAuditLogs appends a batch of entries
func (s *AuditLogs) InsertAuditLogs(_ context.Context, logs []models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, logs...)
	return nil
}

// Record appends a single entry synchronously
func (s *AuditLogs) Record(ctx context.Context, entry models.AuditLog) {
	_ = s.InsertAuditLogs(ctx, []models.AuditLog{entry})
}

// Entries returns a snapshot of the recorded entries
func (s *AuditLogs) Entries() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.logs)
}
