package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type captureSender struct {
	sent []*mail.Msg
	err  error
}

func (c *captureSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, messages...)
	return nil
}

func newTestSMTP(sender *captureSender) *SMTP {
	return &SMTP{
		client: sender,
		cfg:    SMTPConfig{From: "kiosk@park.test", FromName: "Parque", ParkName: "Jumping Park"},
		logger: logging.Logger,
	}
}

func testConsent() *models.Consent {
	signed := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	return &models.Consent{
		Consecutivo: 42,
		Adult:       models.AdultSnapshot{Cedula: "1234567890", FullName: "Ana Gomez", Email: "ana@example.com"},
		Minors:      []models.MinorRecord{{FullName: "Sofia Gomez", BirthDate: "2015-05-01", Relationship: models.RelationshipChild}},
		SignedAt:    signed,
		ValidUntil:  signed.Add(models.ConsentValidity),
	}
}

func TestSMTP_SendCode(t *testing.T) {
	sender := &captureSender{}
	s := newTestSMTP(sender)

	require.NoError(t, s.SendCode(context.Background(), "ana@example.com", "482913", 10*time.Minute))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, rcpts)
	assert.Len(t, msg.GetGenHeader(mail.HeaderSubject), 1)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "482913")
}

func TestSMTP_SendConsentAttachesPDF(t *testing.T) {
	sender := &captureSender{}
	s := newTestSMTP(sender)

	require.NoError(t, s.SendConsent(context.Background(), "ana@example.com", testConsent(), []byte("%PDF-1.3 test")))
	require.Len(t, sender.sent, 1)

	attachments := sender.sent[0].GetAttachments()
	require.Len(t, attachments, 1)
	assert.Equal(t, "consentimiento-42.pdf", attachments[0].Name)
	assert.Contains(t, sender.sent[0].GetGenHeader(mail.HeaderSubject)[0], "No. 42")
}

func TestSMTP_SendConsentWithoutPDF(t *testing.T) {
	sender := &captureSender{}
	s := newTestSMTP(sender)

	require.NoError(t, s.SendConsent(context.Background(), "ana@example.com", testConsent(), nil))
	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].GetAttachments())
}

func TestSMTP_InvalidRecipient(t *testing.T) {
	sender := &captureSender{}
	s := newTestSMTP(sender)

	err := s.SendCode(context.Background(), "not an address", "482913", time.Minute)
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestSMTP_SendFailure(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	s := newTestSMTP(sender)

	err := s.SendCode(context.Background(), "ana@example.com", "482913", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewSMTP(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525, From: "kiosk@park.test"}, logging.Logger)
	require.NoError(t, err)
	assert.NotNil(t, s.client)
}

func TestLog_NeverFails(t *testing.T) {
	l := NewLog(logging.Logger)
	assert.NoError(t, l.SendCode(context.Background(), "ana@example.com", "482913", time.Minute))
	assert.NoError(t, l.SendConsent(context.Background(), "ana@example.com", testConsent(), nil))
}
