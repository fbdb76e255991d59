package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const PasswordResetTemplate = "password_reset"

const passwordResetHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Hello, {{.Username}}</h2>
  <p>We received a request to reset your password.</p>
  <p>Your reset code:</p>
  <p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
  {{if .Link}}<p><a href="{{.Link}}">Reset password</a></p>{{end}}
  <p>The code expires in {{.ExpiresIn}}. If you did not request a reset, ignore this email.</p>
</body>
</html>`

// TemplateData - данные для шаблонов писем
type TemplateData map[string]interface{}

// TemplateManager хранит разобранные HTML шаблоны писем
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер со встроенными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	// встроенный шаблон валиден, ошибка невозможна
	_ = tm.AddTemplate(PasswordResetTemplate, passwordResetHTML)
	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// AddTemplate добавляет или заменяет шаблон
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
