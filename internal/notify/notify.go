// Package notify delivers confirmation mail. Every Mailer returns the
// delivery error to the caller.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/kotbarbarossa/yamdb-final/internal/events"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

type Mailer interface {
	Send(ctx context.Context, subject, body, to string) error
}

// LogMailer writes messages to the request logger. Used in development.
type LogMailer struct {
	From string
}

func (m LogMailer) Send(ctx context.Context, subject, body, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("mail_sent", "backend", "log", "from", m.From, "to", to, "subject", subject, "body", body)
	return nil
}

type SMTPMailer struct {
	Addr     string
	From     string
	User     string
	Password string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(addr, from, user, password string) *SMTPMailer {
	return &SMTPMailer{Addr: addr, From: from, User: user, Password: password, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, subject, body, to string) error {
	var auth smtp.Auth
	if m.User != "" {
		host, _, _ := strings.Cut(m.Addr, ":")
		auth = smtp.PlainAuth("", m.User, m.Password, host)
	}
	msg := buildMessage(m.From, to, subject, body)

	send := m.send
	if send == nil {
		send = smtp.SendMail
	}

	// net/smtp has no context support; the result is abandoned on timeout.
	done := make(chan error, 1)
	go func() {
		done <- send(m.Addr, auth, m.From, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp: send to %s: %w", to, ctx.Err())
	}
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// KafkaMailer hands messages to a mail relay consuming Topic. Send returns
// once the broker acknowledged the write.
type KafkaMailer struct {
	Publisher events.Publisher
	Topic     string
	From      string
}

func (m *KafkaMailer) Send(ctx context.Context, subject, body, to string) error {
	if m.Publisher == nil {
		return errors.New("kafka mailer: no publisher")
	}
	msg := Message{From: m.From, To: to, Subject: subject, Body: body}
	return m.Publisher.Publish(ctx, m.Topic, to, msg)
}
