package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

// Sender delivers a password-reset link to a destination address. Delivery is
// an external collaborator: callers only see success or failure.
type Sender interface {
	SendResetLink(ctx context.Context, to, link string) error
}

// SMTPSender sends via a configured SMTP relay.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
}

func NewSMTPSender(host string, port int, user, pass string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass}
}

func (s *SMTPSender) SendResetLink(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(
		"From: No Reply <%s>\r\nTo: %s\r\nSubject: Reset your password\r\nContent-Type: text/html; charset=utf-8\r\n\r\n"+
			"<p>You requested to reset your password.</p>"+
			"<p>Click the link below to set a new password. This link expires in 1 hour.</p>"+
			"<p><a href=\"%s\">%s</a></p>"+
			"<p>If you did not request this, you can safely ignore this email.</p>\r\n",
		s.user, to, link, link,
	)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)

	if err := smtp.SendMail(addr, auth, s.user, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// LogSender is the development fallback when no SMTP relay is configured:
// the link lands in the server log instead of a mailbox.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) SendResetLink(ctx context.Context, to, link string) error {
	log.Info().Str("to", to).Str("link", link).Msg("password reset link (smtp not configured)")
	return nil
}
