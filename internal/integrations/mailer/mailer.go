package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer отправляет транзакционные письма через SMTP
// При выключенной почте письма только логируются
type Mailer struct {
	cfg  Config
	log  Logger
	send sendFunc
}

// New создает новый экземпляр Mailer
func New(cfg Config, log Logger) *Mailer {
	return &Mailer{
		cfg:  cfg,
		log:  log,
		send: smtp.SendMail,
	}
}

// SendMagicLink отправляет ссылку для входа
func (m *Mailer) SendMagicLink(ctx context.Context, to string, data MagicLinkMail) error {
	return m.deliver(ctx, to, tplMagicLink, data)
}

// SendBookingConfirmation отправляет подтверждение оплаченного заказа
func (m *Mailer) SendBookingConfirmation(ctx context.Context, to string, data OrderMail) error {
	return m.deliver(ctx, to, tplConfirmation, data)
}

// SendBookingCancellation отправляет уведомление об отмене брони
func (m *Mailer) SendBookingCancellation(ctx context.Context, to string, data CancellationMail) error {
	return m.deliver(ctx, to, tplCancellation, data)
}

func (m *Mailer) deliver(ctx context.Context, to, name string, data interface{}) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTemplate, name, err)
	}

	subject := subjects[name]

	if !m.cfg.Enabled {
		m.log.Info("Mailer disabled, message to=%s subject=%q:\n%s", to, subject, body.String())
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}

	msg := buildMessage(m.cfg.From, to, subject, body.String())
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		m.log.Error("Mailer: failed to send %s to=%s: %v", name, to, err)
		return fmt.Errorf("%w: %v", ErrSend, err)
	}

	m.log.Info("Mailer: %s sent to=%s", name, to)
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.TrimLeft(body, "\n"), "\n", "\r\n"))
	return []byte(b.String())
}
