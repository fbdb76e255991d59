package email

import (
	"context"
	"fmt"

	"blog_backend/internal/config"
	"blog_backend/internal/logger"

	"gopkg.in/gomail.v2"
)

// Message - одно письмо в формате HTML
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender доставляет письмо получателю
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender выбирает отправителя по email.driver
func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Driver {
	case "smtp":
		return NewGomailSender(cfg), nil
	case "log":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported email driver: %q", cfg.Driver)
	}
}

// GomailSender отправляет письма через SMTP
type GomailSender struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func NewGomailSender(cfg config.EmailConfig) *GomailSender {
	return &GomailSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.FromEmail,
		name:   cfg.FromName,
	}
}

func (s *GomailSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	if s.name != "" {
		m.SetAddressHeader("From", s.from, s.name)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender пишет письмо в лог вместо отправки (локальная разработка)
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.CtxInfo(ctx, "Email (log driver)", "to", msg.To, "subject", msg.Subject)
	logger.CtxDebug(ctx, "Email body", "body", msg.HTMLBody)
	return nil
}
