package provider

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notifyhub/jobboard/internal/domain"
)

// SMTPConfig carries the relay settings read from EMAIL_* variables.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPProvider delivers email through an SMTP relay, upgrading to TLS when
// the server offers STARTTLS.
type SMTPProvider struct {
	cfg SMTPConfig
}

func NewSMTPProvider(cfg SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(ctx context.Context, e *domain.Email) (*SendResponse, error) {
	addr := net.JoinHostPort(p.cfg.Host, strconv.Itoa(p.cfg.Port))
	dialer := &net.Dialer{Timeout: p.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else if p.cfg.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(p.cfg.Timeout))
	}

	c, err := smtp.NewClient(conn, p.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: p.cfg.Host}); err != nil {
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}
	if p.cfg.User != "" {
		auth := smtp.PlainAuth("", p.cfg.User, p.cfg.Password, p.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}

	msgID := uuid.NewString()
	if err := c.Mail(p.cfg.From); err != nil {
		return nil, fmt.Errorf("smtp MAIL: %w", err)
	}
	if err := c.Rcpt(e.To); err != nil {
		return nil, fmt.Errorf("smtp RCPT: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return nil, fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(buildMessage(p.cfg.From, msgID, e)); err != nil {
		return nil, fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish message: %w", err)
	}
	if err := c.Quit(); err != nil {
		return nil, fmt.Errorf("smtp QUIT: %w", err)
	}
	return &SendResponse{MessageID: msgID, Status: "sent"}, nil
}

func buildMessage(from, msgID string, e *domain.Email) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + e.To + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(e.Subject) + "\r\n")
	b.WriteString("Message-ID: <" + msgID + "@jobboard>\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.HTML)
	return []byte(b.String())
}

// sanitizeHeader strips CR and LF so user-controlled text (job titles)
// cannot inject headers.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

var _ Provider = (*SMTPProvider)(nil)
