package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	FrontendURL  string
	AppName      string
}

// EmailService sends transactional mail over SMTP
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	if config.AppName == "" {
		config.AppName = "Optica"
	}
	return &EmailService{config: config, send: smtp.SendMail}
}

// Enabled reports whether an SMTP host is configured
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != ""
}

// ExpiryNotice is the data behind a subscription expiry warning
type ExpiryNotice struct {
	Email          string
	DaysRemaining  int
	HoursRemaining int
	EndDate        string
}

// SendSubscriptionExpiring warns a shop owner that access ends soon
func (s *EmailService) SendSubscriptionExpiring(n ExpiryNotice) error {
	if !s.Enabled() {
		return nil
	}

	body, err := render(expiringTemplate, struct {
		ExpiryNotice
		AppName  string
		RenewURL string
	}{n, s.config.AppName, s.config.FrontendURL + "/profile"})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Your %s subscription expires in %d days and %d hours", s.config.AppName, n.DaysRemaining, n.HoursRemaining)
	return s.deliver(n.Email, subject, body)
}

func (s *EmailService) deliver(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	headers := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n",
		s.config.FromName, s.config.FromEmail, to, subject,
	)

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, []byte(headers+htmlBody)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var expiringTemplate = template.Must(template.New("subscription_expiring").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="margin:0;padding:24px;font-family:'Segoe UI',Tahoma,sans-serif;background:#f4f7fa;">
  <table role="presentation" style="max-width:560px;margin:0 auto;background:#ffffff;border-radius:12px;">
    <tr><td style="padding:32px;">
      <h2 style="margin:0 0 16px 0;color:#1a1a2e;">{{.AppName}}</h2>
      <p style="color:#4a5568;font-size:16px;line-height:1.6;">
        The subscription for <strong>{{.Email}}</strong> ends on <strong>{{.EndDate}}</strong>,
        in {{.DaysRemaining}} days and {{.HoursRemaining}} hours.
      </p>
      <p style="color:#4a5568;font-size:16px;line-height:1.6;">
        After that date the shop will be signed out until the subscription is renewed.
      </p>
      <p><a href="{{.RenewURL}}" style="color:#667eea;">Manage subscription</a></p>
    </td></tr>
  </table>
</body>
</html>
`))
