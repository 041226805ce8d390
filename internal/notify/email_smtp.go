package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/domodwyer/mailyak/v3"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

const defaultFromName = "Venue Bookings"

// SMTPConfig holds configuration for an SMTP relay.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPSender sends emails through an SMTP relay. STARTTLS is negotiated when
// the server offers it.
type SMTPSender struct {
	addr      string
	auth      smtp.Auth
	fromEmail string
	fromName  string
	logger    *logging.Logger
	send      func(*mailyak.MailYak) error
}

// NewSMTPSender creates an SMTP sender, or nil when no host is configured.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Host == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr:      net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth:      auth,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
		send:      func(m *mailyak.MailYak) error { return m.Send() },
	}
}

// Send sends an email via SMTP.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil {
		return fmt.Errorf("notify: smtp sender not configured")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notify: smtp send: %w", err)
	}

	m := mailyak.New(s.addr, s.auth)
	composeMail(m, s.fromEmail, s.fromName, msg)

	if err := s.send(m); err != nil {
		s.logger.Error("smtp send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: smtp send failed: %w", err)
	}

	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject)
	return nil
}

// composeMail fills a mailyak message from an EmailMessage.
func composeMail(m *mailyak.MailYak, fromEmail, fromName string, msg EmailMessage) {
	m.From(fromEmail)
	m.FromName(fromName)
	m.To(msg.To)
	m.Subject(msg.Subject)
	if msg.Body != "" {
		m.Plain().Set(msg.Body)
	}
	if msg.HTML != "" {
		m.HTML().Set(msg.HTML)
	}
	for _, att := range msg.Attachments {
		m.AttachWithMimeType(att.Filename, bytes.NewReader(att.Data), att.mimeType())
	}
}

var _ EmailSender = (*SMTPSender)(nil)
