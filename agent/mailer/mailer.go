// Package mailer delivers the test-drive confirmation summary over SMTP with
// implicit TLS. Delivery is best-effort: the orchestrator dispatches it after
// the reply is already decided and only logs failures.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/mousaid/car-sales-agent/agent/contract"
	profilex "github.com/mousaid/car-sales-agent/agent/profile"
)

type Config struct {
	Host     string `envconfig:"HOST" split_words:"true"`
	Port     int    `envconfig:"PORT" split_words:"true" default:"465"`
	Sender   string `envconfig:"SENDER" split_words:"true"`
	Password string `envconfig:"PASSWORD" split_words:"true"`
}

func (c Config) complete() bool {
	return c.Host != "" && c.Sender != "" && c.Password != ""
}

type SMTPMailer struct {
	cfg Config
}

var _ contract.Mailer = (*SMTPMailer)(nil)

// New is permissive about missing configuration; SendConfirmation reports it
// instead so an unconfigured mailer degrades to a logged warning per send.
func New(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, p *profilex.Profile) error {
	if p == nil || p.Email == nil || strings.TrimSpace(*p.Email) == "" {
		return fmt.Errorf("profile has no email address")
	}
	if !m.cfg.complete() {
		return fmt.Errorf("smtp configuration is incomplete")
	}

	receiver := strings.TrimSpace(*p.Email)
	msg := buildMessage(m.cfg.Sender, receiver, p)
	return m.send(ctx, receiver, msg)
}

func (m *SMTPMailer) send(ctx context.Context, receiver string, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: m.cfg.Host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(m.cfg.Sender); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(receiver); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}
	return client.Quit()
}

func buildMessage(sender, receiver string, p *profilex.Profile) []byte {
	name := "User"
	if p.Name != nil {
		name = *p.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", receiver)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("Subject: Your Test Drive Schedule Confirmation\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Dear %s,\r\n\r\n", name)
	b.WriteString("Thank you for your interest in a test drive! We have received your request and will contact you shortly to schedule your test drive.\r\n\r\n")
	b.WriteString("Here's a summary of your contact information:\r\n")
	fmt.Fprintf(&b, "Name: %s\r\n", orNA(p.Name))
	fmt.Fprintf(&b, "Location: %s\r\n", orNA(p.Location))
	fmt.Fprintf(&b, "Phone: %s\r\n", orNA(p.PhoneNumber))
	fmt.Fprintf(&b, "Email: %s\r\n", receiver)
	if p.TestDriveDate != nil {
		fmt.Fprintf(&b, "Test drive date: %s\r\n", p.TestDriveDate.Format("2006-01-02 15:04"))
	} else {
		b.WriteString("Test drive date: N/A\r\n")
	}
	b.WriteString("\r\nBest regards,\r\nYour Car Recommendation Assistant\r\n")

	return []byte(b.String())
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}
