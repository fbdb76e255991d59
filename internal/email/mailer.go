// Package email - письма пользователям: шаблоны и доставка
package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Mailer собирает письма из шаблонов и передает их Sender
type Mailer struct {
	sender    Sender
	templates *TemplateManager
	resetURL  string
}

func NewMailer(sender Sender, templates *TemplateManager, resetURL string) *Mailer {
	return &Mailer{sender: sender, templates: templates, resetURL: resetURL}
}

// SendPasswordReset отправляет одноразовый код сброса пароля
func (m *Mailer) SendPasswordReset(ctx context.Context, to, username, code string, ttl time.Duration) error {
	body, err := m.templates.Render(PasswordResetTemplate, TemplateData{
		"Username":  username,
		"Code":      code,
		"Link":      m.resetLink(code),
		"ExpiresIn": ttl.String(),
	})
	if err != nil {
		return err
	}

	return m.sender.Send(ctx, Message{
		To:       to,
		Subject:  "Password reset code",
		HTMLBody: body,
	})
}

// resetLink - <reset_url>/<code>; пустой reset_url отключает ссылку
func (m *Mailer) resetLink(code string) string {
	if m.resetURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(m.resetURL, "/"), url.PathEscape(code))
}
