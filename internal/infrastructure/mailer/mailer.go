package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// SMTPMailer sends transactional mail over SMTP. It is constructed once at
// startup and reused for the process lifetime.
type SMTPMailer struct {
	client       *mail.Client
	fromAddr     string
	fromName     string
	resetBaseURL string
	logger       *slog.Logger
}

// NewSMTPMailer builds the SMTP client. Port 465 uses implicit TLS, anything
// else negotiates STARTTLS.
func NewSMTPMailer(host string, port int, user, password, fromName, resetBaseURL string, logger *slog.Logger) (*SMTPMailer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(password),
	}
	if port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPMailer{
		client:       client,
		fromAddr:     user,
		fromName:     fromName,
		resetBaseURL: resetBaseURL,
		logger:       logger,
	}, nil
}

// Verify dials the SMTP server once to confirm the transport is usable
func (m *SMTPMailer) Verify(ctx context.Context) error {
	if err := m.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp verify failed: %w", err)
	}
	return m.client.Close()
}

// SendPasswordReset delivers the reset link for the given token
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	resetURL := fmt.Sprintf("%s?token=%s", m.resetBaseURL, token)

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.fromAddr); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject("Password Reset Request")
	msg.SetBodyString(mail.TypeTextHTML, resetBody(resetURL))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("failed to send password reset email",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	m.logger.Info("password reset email sent")
	return nil
}

func resetBody(resetURL string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>Password Reset Request</h1>
  <p>You requested a password reset. Click the button below to reset your password:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="%s" style="display: inline-block; padding: 12px 24px; background: #0d6efd; color: white; text-decoration: none; border-radius: 5px; font-weight: bold;">Reset Password</a>
  </div>
  <p>If you didn't request this, please ignore this email.</p>
  <p>This link will expire in 1 hour.</p>
  <hr style="margin: 20px 0; border: none; border-top: 1px solid #eee;">
  <p style="color: #666; font-size: 12px;">This is an automated email from Evaluator Hub. Please do not reply.</p>
</div>`, resetURL)
}

// LogMailer records mail it would have sent instead of delivering it. Used in
// development when SMTP is disabled by feature flag.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Verify always succeeds
func (m *LogMailer) Verify(ctx context.Context) error { return nil }

// SendPasswordReset logs the reset token instead of emailing it
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	m.logger.Info("password reset email suppressed",
		slog.String("to", to),
		slog.String("token", token),
	)
	return nil
}
