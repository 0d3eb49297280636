package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is an outbound statement.
type Message struct {
	FromName    string
	From        string
	To          string
	Subject     string
	Body        Body
	Attachments []string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the settings of an SMTP submission server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPMailer sends messages over SMTP with mandatory STARTTLS and PLAIN
// authentication.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer returns a mailer for cfg. Port defaults to 587.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPMailer{cfg: cfg}
}

// Send builds msg and delivers it in a single connection. Failures are
// returned as is; there is no retry.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := BuildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(m.cfg.Timeout),
	)
	if err != nil {
		return eris.Wrap(err, "notify: smtp client")
	}

	zap.L().Info("sending statement",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(out.GetAttachments())),
	)
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return eris.Wrapf(err, "notify: send to %s", msg.To)
	}
	return nil
}

// BuildMessage converts msg into a MIME message with the plain body first
// and the HTML body as its alternative. Attachments that do not exist are
// skipped with a warning.
func BuildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.From); err != nil {
		return nil, eris.Wrapf(err, "notify: sender %q", msg.From)
	}
	if err := m.To(msg.To); err != nil {
		return nil, eris.Wrapf(err, "notify: recipient %q", msg.To)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Body.Plain)
	m.AddAlternativeString(mail.TypeTextHTML, msg.Body.HTML)

	for _, path := range msg.Attachments {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				zap.L().Warn("attachment not found", zap.String("path", path))
			} else {
				zap.L().Warn("attachment unreadable", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		m.AttachFile(path,
			mail.WithFileName(filepath.Base(path)),
			mail.WithFileContentType(mail.ContentType("application/pdf")),
		)
	}
	return m, nil
}
