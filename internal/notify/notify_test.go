package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_Send(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	m := NewSMTPMailer("mail.local:25", "noreply@yamdb.local", "bot", "secret")
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg, gotAuth = addr, to, string(msg), a
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "Your code", "abc", "alice@example.com"))
	assert.Equal(t, "mail.local:25", gotAddr)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.NotNil(t, gotAuth)
	assert.Contains(t, gotMsg, "Subject: Your code\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nabc")
}

func TestSMTPMailer_PropagatesFailure(t *testing.T) {
	m := NewSMTPMailer("mail.local:25", "noreply@yamdb.local", "", "")
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := m.Send(context.Background(), "s", "b", "alice@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPMailer_Timeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	m := NewSMTPMailer("mail.local:25", "noreply@yamdb.local", "", "")
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-block
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Send(ctx, "s", "b", "alice@example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type recordingPublisher struct {
	topic, key string
	event      any
	err        error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.topic, p.key, p.event = topic, key, event
	return p.err
}

func TestKafkaMailer_Send(t *testing.T) {
	p := &recordingPublisher{}
	m := &KafkaMailer{Publisher: p, Topic: "mail_outbox", From: "noreply@yamdb.local"}

	require.NoError(t, m.Send(context.Background(), "Your code", "abc", "alice@example.com"))
	assert.Equal(t, "mail_outbox", p.topic)
	assert.Equal(t, "alice@example.com", p.key)
	assert.Equal(t, Message{From: "noreply@yamdb.local", To: "alice@example.com", Subject: "Your code", Body: "abc"}, p.event)

	p.err = errors.New("no ack")
	assert.Error(t, m.Send(context.Background(), "s", "b", "alice@example.com"))
}

func TestLogMailer_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, LogMailer{}.Send(ctx, "s", "b", "alice@example.com"))
	assert.NoError(t, LogMailer{}.Send(context.Background(), "s", "b", "alice@example.com"))
}
