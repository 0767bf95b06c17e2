package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/Payphone-Digital/bizsite/config"
	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/Payphone-Digital/bizsite/pkg/metrics"
	"github.com/wneessen/go-mail"
)

// Sender delivers account emails. Implementations do not retry.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, token, displayName string) error
	SendPasswordChanged(ctx context.Context, to, displayName string) error
}

type SMTPSender struct {
	cfg      config.MailConfig
	renderer *Renderer
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewSMTPSender(cfg config.MailConfig, m *metrics.Metrics) (*SMTPSender, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &SMTPSender{cfg: cfg, renderer: renderer, metrics: m, now: time.Now}, nil
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, token, displayName string) error {
	data := TemplateData{
		SiteName:  s.cfg.SiteName,
		Name:      displayName,
		Link:      ResetLink(s.cfg.ResetURL, token),
		ExpiresAt: s.now().Add(constants.ResetTokenTTL).UTC(),
	}
	err := s.send(ctx, TemplatePasswordReset, to, data)
	s.metrics.EmailSent(TemplatePasswordReset, err)
	return err
}

func (s *SMTPSender) SendPasswordChanged(ctx context.Context, to, displayName string) error {
	data := TemplateData{
		SiteName:  s.cfg.SiteName,
		Name:      displayName,
		ChangedAt: s.now().UTC(),
	}
	err := s.send(ctx, TemplatePasswordChanged, to, data)
	s.metrics.EmailSent(TemplatePasswordChanged, err)
	return err
}

func (s *SMTPSender) send(ctx context.Context, name, to string, data TemplateData) error {
	subject, body, err := s.renderer.Render(name, data)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		logger.ErrorWithContext(ctx, "Failed to send email").
			String("template", name).
			String("smtp_host", s.cfg.Host).
			Err(err).
			Log()
		return fmt.Errorf("send %s email: %w", name, err)
	}

	logger.InfoWithContext(ctx, "Email sent").
		String("template", name).
		Log()
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(10 * time.Second),
	}
	if s.cfg.TLSRequired {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// LogSender writes emails to the log instead of sending them. Used when no
// SMTP host is configured.
type LogSender struct {
	renderer *Renderer
	resetURL string
	siteName string
}

func NewLogSender(cfg config.MailConfig) (*LogSender, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &LogSender{renderer: renderer, resetURL: cfg.ResetURL, siteName: cfg.SiteName}, nil
}

func (s *LogSender) SendPasswordReset(ctx context.Context, to, token, displayName string) error {
	subject, _, err := s.renderer.Render(TemplatePasswordReset, TemplateData{
		SiteName:  s.siteName,
		Name:      displayName,
		Link:      ResetLink(s.resetURL, token),
		ExpiresAt: time.Now().Add(constants.ResetTokenTTL).UTC(),
	})
	if err != nil {
		return err
	}
	logger.InfoWithContext(ctx, "Email delivery disabled, reset email not sent").
		String("subject", subject).
		String("to", to).
		Log()
	return nil
}

func (s *LogSender) SendPasswordChanged(ctx context.Context, to, displayName string) error {
	logger.InfoWithContext(ctx, "Email delivery disabled, password change notice not sent").
		String("to", to).
		Log()
	return nil
}
