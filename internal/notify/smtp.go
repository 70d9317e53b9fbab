// Package notify delivers one-time codes and consent confirmations by email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const sendTimeout = 20 * time.Second

// SMTPConfig configures the SMTP notifier
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	ParkName string
}

// sender is the part of *mail.Client the notifier uses
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTP sends emails through an SMTP relay
type SMTP struct {
	client sender
	cfg    SMTPConfig
	logger *logging.SafeLogger
}

// NewSMTP creates an SMTP notifier. Authentication is enabled when a
// username is configured.
func NewSMTP(cfg SMTPConfig, logger *logging.SafeLogger) (*SMTP, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(sendTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTP{client: client, cfg: cfg, logger: logger.Named("notify")}, nil
}

func (s *SMTP) newMessage(to, subject string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	return msg, nil
}

func render(tmpl executor, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// codeMessage builds the email carrying a one-time code
func (s *SMTP) codeMessage(email, code string, ttl time.Duration) (*mail.Msg, error) {
	msg, err := s.newMessage(email, fmt.Sprintf("%s: tu código de verificación", s.cfg.ParkName))
	if err != nil {
		return nil, err
	}

	data := codeTemplateData{ParkName: s.cfg.ParkName, Code: code, Minutes: int(ttl.Minutes())}
	text, err := render(codeTextTemplate, data)
	if err != nil {
		return nil, err
	}
	html, err := render(codeHTMLTemplate, data)
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}

// consentMessage builds the confirmation email, attaching pdf when present
func (s *SMTP) consentMessage(email string, consent *models.Consent, pdf []byte) (*mail.Msg, error) {
	msg, err := s.newMessage(email, fmt.Sprintf("%s: consentimiento No. %d", s.cfg.ParkName, consent.Consecutivo))
	if err != nil {
		return nil, err
	}

	data := consentTemplateData{
		ParkName:    s.cfg.ParkName,
		AdultName:   consent.Adult.FullName,
		Consecutivo: consent.Consecutivo,
		SignedAt:    consent.SignedAt.Format("2006-01-02 15:04 MST"),
		ValidUntil:  consent.ValidUntil.Format("2006-01-02"),
		Minors:      consent.Minors,
		HasPDF:      len(pdf) > 0,
	}
	text, err := render(consentTextTemplate, data)
	if err != nil {
		return nil, err
	}
	html, err := render(consentHTMLTemplate, data)
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	if len(pdf) > 0 {
		name := fmt.Sprintf("consentimiento-%d.pdf", consent.Consecutivo)
		if err := msg.AttachReader(name, bytes.NewReader(pdf), mail.WithFileContentType(mail.ContentType("application/pdf"))); err != nil {
			return nil, fmt.Errorf("failed to attach certificate: %w", err)
		}
	}
	return msg, nil
}

// SendCode emails a one-time code
func (s *SMTP) SendCode(ctx context.Context, email, code string, ttl time.Duration) error {
	msg, err := s.codeMessage(email, code, ttl)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}
	s.logger.Debug("code email sent", zap.String("email", observability.MaskEmail(email)))
	return nil
}

// SendConsent emails the consent confirmation
func (s *SMTP) SendConsent(ctx context.Context, email string, consent *models.Consent, pdf []byte) error {
	msg, err := s.consentMessage(email, consent, pdf)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send consent: %w", err)
	}
	s.logger.Debug("consent email sent",
		zap.String("email", observability.MaskEmail(email)),
		zap.Int64("consecutivo", consent.Consecutivo))
	return nil
}
