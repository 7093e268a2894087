// internal/app/system/mailer/mailer.go
package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	dialTimeout = 8 * time.Second
	sendTimeout = 15 * time.Second
)

// Email is a single outbound message. HTMLBody and TextBody are sent
// as a multipart/alternative body when both are set.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string // empty means no AUTH (e.g. Mailpit in dev)
	Password string
	From     string
	FromName string
}

// Mailer sends email over SMTP with STARTTLS when the server offers it.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

// New creates a Mailer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger}
}

// Send delivers one email synchronously. Most callers should enqueue
// through Queue instead so a slow SMTP server never blocks a request.
func (m *Mailer) Send(e Email) error {
	msg := m.buildMessage(e)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	// Deadline covers the whole SMTP conversation, not just the dial.
	_ = conn.SetDeadline(time.Now().Add(sendTimeout))

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(e.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	m.log.Info("email sent",
		zap.String("to", e.To),
		zap.String("subject", e.Subject))
	return nil
}

const mimeBoundary = "mentorlink-alt-7f3b9c"

func (m *Mailer) buildMessage(e Email) []byte {
	fromHeader := m.cfg.From
	if m.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	headers := []string{
		"From: " + fromHeader,
		"To: " + e.To,
		"Subject: " + e.Subject,
		"MIME-Version: 1.0",
	}

	var body string
	switch {
	case e.HTMLBody != "" && e.TextBody != "":
		headers = append(headers,
			fmt.Sprintf(`Content-Type: multipart/alternative; boundary=%q`, mimeBoundary))
		body = strings.Join([]string{
			"--" + mimeBoundary,
			`Content-Type: text/plain; charset="UTF-8"`,
			"",
			e.TextBody,
			"--" + mimeBoundary,
			`Content-Type: text/html; charset="UTF-8"`,
			"",
			e.HTMLBody,
			"--" + mimeBoundary + "--",
		}, "\r\n")
	case e.HTMLBody != "":
		headers = append(headers, `Content-Type: text/html; charset="UTF-8"`)
		body = e.HTMLBody
	default:
		headers = append(headers, `Content-Type: text/plain; charset="UTF-8"`)
		body = e.TextBody
	}

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}
