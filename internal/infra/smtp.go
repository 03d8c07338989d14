package infra

import (
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"net/textproto"

	"attendance/internal/config"

	"github.com/jordan-wright/email"
)

// ErrInvalidMessage marks a message that no retry can deliver.
var ErrInvalidMessage = errors.New("mailer: invalid message")

// IsPermanentMailError reports errors tied to one message: a malformed
// recipient, an unreadable attachment, or a 5xx reply refusing the mailbox or content.
func IsPermanentMailError(err error) bool {
	if errors.Is(err, ErrInvalidMessage) {
		return true
	}
	var reply *textproto.Error
	if errors.As(err, &reply) {
		switch reply.Code {
		case 501, 550, 551, 552, 553:
			return true
		}
	}
	return false
}

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

func (m *Mailer) From() string { return m.from }

// Send delivers a plain-text email, attaching the file at attachmentPath when set.
func (m *Mailer) Send(to, subject, body, attachmentPath string) error {
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("%w: recipient %q: %v", ErrInvalidMessage, to, err)
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if attachmentPath != "" {
		if _, err := e.AttachFile(attachmentPath); err != nil {
			return fmt.Errorf("%w: attach file: %v", ErrInvalidMessage, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
