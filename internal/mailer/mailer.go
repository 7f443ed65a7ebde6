package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/referral-portal/referral-service/internal/config"
)

// Mailer delivers verification codes
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}

// New returns an SMTP mailer when SMTP_HOST is set, otherwise one that only logs
func New(cfg config.SMTPConfig, logger *slog.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{logger: logger}
	}
	return NewSMTPMailer(cfg, logger)
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string) error {
	msg := BuildOTPMessage(m.from, to, code)

	// gomail has no context support; bail out early if the request is already gone.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}

	m.logger.InfoContext(ctx, "OTP email sent", "to", to)
	return nil
}

// BuildOTPMessage renders the verification email
func BuildOTPMessage(from, to, code string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/plain", fmt.Sprintf("Your OTP code is: %s", code))
	msg.AddAlternative("text/html", fmt.Sprintf("<p>Your OTP code is: <strong>%s</strong></p>", code))
	return msg
}

// LogMailer writes codes to the log for local development
type LogMailer struct {
	logger *slog.Logger
}

func (m *LogMailer) SendOTP(ctx context.Context, to, code string) error {
	m.logger.WarnContext(ctx, "SMTP not configured, OTP logged instead of sent", "to", to, "code", code)
	return nil
}
