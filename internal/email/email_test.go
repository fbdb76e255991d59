package email

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"blog_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func TestMailer_SendPasswordReset(t *testing.T) {
	sender := &captureSender{}
	m := NewMailer(sender, NewTemplateManager(), "http://localhost:3000/reset-password/")

	err := m.SendPasswordReset(context.Background(), "alice@example.com", "<b>alice</b>", "a1b2c3", 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "Password reset code", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "a1b2c3")
	assert.Contains(t, msg.HTMLBody, "http://localhost:3000/reset-password/a1b2c3")
	assert.Contains(t, msg.HTMLBody, "10m0s")
	// имя пользователя экранируется
	assert.Contains(t, msg.HTMLBody, "&lt;b&gt;alice&lt;/b&gt;")
}

func TestMailer_NoLinkWithoutResetURL(t *testing.T) {
	sender := &captureSender{}
	m := NewMailer(sender, NewTemplateManager(), "")

	require.NoError(t, m.SendPasswordReset(context.Background(), "a@b.c", "a", "ffffff", time.Minute))
	assert.NotContains(t, sender.sent[0].HTMLBody, "<a href")
}

func TestMailer_PropagatesSenderError(t *testing.T) {
	boom := errors.New("smtp down")
	m := NewMailer(&captureSender{err: boom}, NewTemplateManager(), "")

	err := m.SendPasswordReset(context.Background(), "a@b.c", "a", "ffffff", time.Minute)
	assert.ErrorIs(t, err, boom)
}

func TestTemplateManager_UnknownTemplate(t *testing.T) {
	_, err := NewTemplateManager().Render("missing", nil)
	assert.ErrorContains(t, err, "template not found")
}

func TestNewSender(t *testing.T) {
	s, err := NewSender(config.EmailConfig{Driver: "log"})
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@b.c"}))

	s, err = NewSender(config.EmailConfig{Driver: "smtp", SMTPHost: "localhost", SMTPPort: 25})
	require.NoError(t, err)
	assert.IsType(t, &GomailSender{}, s)

	_, err = NewSender(config.EmailConfig{Driver: "pigeon"})
	assert.Error(t, err)
}

func TestGomailSender_DialFailure(t *testing.T) {
	// занимаем и сразу освобождаем порт, чтобы соединение гарантированно отклонялось
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	s := NewGomailSender(config.EmailConfig{
		SMTPHost:  "127.0.0.1",
		SMTPPort:  port,
		FromEmail: "noreply@example.com",
	})
	err = s.Send(context.Background(), Message{To: "a@b.c", Subject: "s", HTMLBody: "<p>x</p>"})
	assert.ErrorContains(t, err, "failed to send email")
}

func TestGomailSender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewGomailSender(config.EmailConfig{SMTPHost: "127.0.0.1", SMTPPort: 25})
	assert.ErrorIs(t, s.Send(ctx, Message{To: "a@b.c"}), context.Canceled)
}
