package email

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/mail.v2"

	"statsboard-backend/config"
	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/util/datetime"
)

// Sender delivers prepared messages. *mail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// EmailService handles all email operations
type EmailService struct {
	sender      Sender
	fromAddress string
	adminEmail  string
}

// NewEmailService creates a new email service instance
func NewEmailService() *EmailService {
	cfg := config.C.Email

	dialer := mail.NewDialer(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.Username,
		cfg.Password,
	)

	return NewEmailServiceWithSender(dialer, cfg.FromAddress, cfg.AdminEmail)
}

func NewEmailServiceWithSender(sender Sender, fromAddress, adminEmail string) *EmailService {
	return &EmailService{
		sender:      sender,
		fromAddress: fromAddress,
		adminEmail:  adminEmail,
	}
}

// SendCredentialAuditAlert tells the admin which projects failed the credential audit.
func (s *EmailService) SendCredentialAuditAlert(report *model.AuditReport) error {
	failures := report.Failures()
	subject := fmt.Sprintf("Analytics credentials failing for %d of %d projects", len(failures), len(report.Checks))

	var rows strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&rows, "<li><strong>%s</strong> (%s): %s</li>\n",
			html.EscapeString(f.ProjectName),
			html.EscapeString(f.SiteCode),
			html.EscapeString(f.Error),
		)
	}

	body := fmt.Sprintf(`
<html>
<body>
<h2>Credential Audit</h2>
<p>Hi Admin,</p>

<p>The analytics credentials of the following projects could not be verified:</p>
<ul>
%s</ul>

<p><strong>Checked:</strong> %d projects, %s.</p>

<p>Ask the project owners to update the site code or API token in the project settings.</p>

<p>Best regards,<br/>Statsboard</p>
</body>
</html>
	`, rows.String(), len(report.Checks), datetime.FormatSpan(report.StartedAt, report.FinishedAt))

	return s.sendHTML(s.adminEmail, subject, body)
}

// sendHTML sends an HTML email
func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.fromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
