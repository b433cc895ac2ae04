package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the outbound transport the alert dispatcher submits messages to.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP sends plain-text mail over a TCP connection with a bounded deadline.
// When no credentials are configured it degrades to mock mode: the message is
// logged and delivery is skipped, so dev environments never hang on SMTP.
type SMTP struct {
	cfg  config.SMTPConfig
	logg *logger.Logger
}

func NewSMTP(cfg config.SMTPConfig, logg *logger.Logger) *SMTP {
	return &SMTP{cfg: cfg, logg: logg}
}

func (m *SMTP) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	if m.cfg.Username == "" || m.cfg.Password == "" {
		if m.logg != nil {
			ctx = m.logg.WithFields(ctx, map[string]any{
				"to":      msg.To,
				"subject": msg.Subject,
			})
			m.logg.Info(ctx, "mail server not configured, skipping send (mock mode)")
		}
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	dialer := net.Dialer{Timeout: m.cfg.SendTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing smtp server: %w", err)
	}
	if m.cfg.SendTimeout > 0 {
		// One deadline covers the whole SMTP conversation.
		_ = conn.SetDeadline(time.Now().Add(m.cfg.SendTimeout))
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	from := m.cfg.Sender()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write([]byte(formatMessage(from, msg))); err != nil {
		writer.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}

	return client.Quit()
}

func formatMessage(from string, msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}
