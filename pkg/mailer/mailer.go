package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Message is a single transactional email with an HTML body.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Validate reports whether m can be delivered.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("mail recipient is required")
	}
	if strings.ContainsAny(m.To+m.Subject, "\r\n") {
		return errors.New("mail headers must not contain line breaks")
	}
	return nil
}

// Config holds SMTP connection details. Port 465 with implicit TLS is assumed.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	FromName string
	Timeout  time.Duration
}

// SMTPMailer delivers messages over an implicit-TLS SMTP connection.
type SMTPMailer struct {
	cfg Config
}

// NewSMTPMailer creates a mailer for cfg.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// Send delivers msg, honouring ctx for the dial.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	from := m.cfg.User
	header := fmt.Sprintf("From: %s\r\n", from)
	if m.cfg.FromName != "" {
		header = fmt.Sprintf("From: %q <%s>\r\n", m.cfg.FromName, from)
	}
	body := []byte(
		header +
			fmt.Sprintf("To: %s\r\n", msg.To) +
			fmt.Sprintf("Subject: %s\r\n", msg.Subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			msg.HTML,
	)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: m.cfg.Timeout},
		Config:    &tls.Config{ServerName: m.cfg.Host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.cfg.Host, m.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Quit()

	if m.cfg.User != "" {
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("SMTP RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}
