package services

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/blob"
	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/store/memory"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// recordingNotifier keeps every code and consent it is asked to send
type recordingNotifier struct {
	mu       sync.Mutex
	codes    map[string]string
	consents []*models.Consent
	pdfs     [][]byte
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{codes: make(map[string]string)}
}

func (n *recordingNotifier) SendCode(_ context.Context, email, code string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[email] = code
	return nil
}

func (n *recordingNotifier) SendConsent(_ context.Context, _ string, consent *models.Consent, pdf []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.consents = append(n.consents, consent)
	n.pdfs = append(n.pdfs, pdf)
	return nil
}

func (n *recordingNotifier) code(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}

type staticRenderer struct{}

func (staticRenderer) RenderConsent(context.Context, *models.Consent, []byte) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

type failingBlobs struct{}

func (failingBlobs) Put(context.Context, string, []byte, string) (string, error) {
	return "", errBoom
}

func (failingBlobs) Get(context.Context, string) ([]byte, error) {
	return nil, errBoom
}

type failingSequence struct{}

func (failingSequence) NextConsecutivo(context.Context) (int64, error) {
	return 0, errBoom
}

// fixture wires every service to in-memory stores and a fixed clock
type fixture struct {
	now time.Time

	visitors *memory.Visitors
	otps     *memory.Otps
	consents *memory.Consents
	audit    *memory.AuditLogs
	blobs    *blob.Memory
	notifier *recordingNotifier

	identity     *IdentityResolver
	issuer       *OtpIssuer
	validator    *OtpValidator
	orchestrator *ConsentOrchestrator
	verifier     *ConsentVerifier
}

func newFixture(t *testing.T, cfg OtpConfig) *fixture {
	t.Helper()

	f := &fixture{
		now:      time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC),
		visitors: memory.NewVisitors(),
		otps:     memory.NewOtps(),
		consents: memory.NewConsents(),
		audit:    memory.NewAuditLogs(),
		blobs:    blob.NewMemory("http://kiosk.local"),
		notifier: newRecordingNotifier(),
	}
	clock := func() time.Time { return f.now }

	f.identity = NewIdentityResolver(f.visitors, nil, logging.Logger)
	f.issuer = NewOtpIssuer(f.identity, f.otps, f.notifier, f.audit, cfg, logging.Logger)
	f.issuer.now = clock
	f.validator = NewOtpValidator(f.identity, f.otps, f.audit, cfg, logging.Logger)
	f.validator.now = clock
	f.orchestrator = NewConsentOrchestrator(f.consentDeps(), ConsentConfig{
		PolicyVersion: "v1",
		PhoneRegion:   "CO",
	}, logging.Logger)
	f.orchestrator.now = clock
	f.verifier = NewConsentVerifier(f.consents, f.blobs, f.audit, logging.Logger)
	f.verifier.now = clock

	return f
}

func (f *fixture) consentDeps() ConsentDeps {
	return ConsentDeps{
		Identity: f.identity,
		Visitors: f.visitors,
		Consents: f.consents,
		Sequence: f.consents,
		Blobs:    f.blobs,
		Renderer: staticRenderer{},
		Notifier: f.notifier,
		Auditor:  f.audit,
	}
}

// withCodes makes the issuer hand out the given codes in order
func (f *fixture) withCodes(codes ...string) {
	i := 0
	f.issuer.generate = func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

func (f *fixture) seedVisitor(t *testing.T, cedula, email string) {
	t.Helper()
	_, err := f.visitors.UpsertVisitor(context.Background(), models.VisitorUpsert{
		Cedula:   cedula,
		FullName: "Ana Gomez",
		Email:    email,
		Phone:    "+573001234567",
		Minors:   []models.MinorRecord{{FullName: "Luis Gomez", BirthDate: "2016-02-01", Relationship: models.RelationshipChild}},
	}, f.now.Add(-24*time.Hour))
	require.NoError(t, err)
}

func testSignature() string {
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, []byte("signature-strokes")...)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

func validSubmission() models.ConsentSubmission {
	return models.ConsentSubmission{
		AcceptedPolicy: true,
		Signature:      testSignature(),
		Minors: []models.MinorInput{{
			FirstName:    " Sofia ",
			LastName:     "Gomez",
			BirthDate:    "2015-05-01",
			Relationship: "hija",
		}},
		ResponsibleAdult: models.AdultInput{
			FullName:   "Ana  Gomez",
			DocumentID: "1.234.567.890",
			Email:      "Ana@Example.com",
			Phone:      "300 123 4567",
		},
		IPAddress: "10.0.0.7",
	}
}
