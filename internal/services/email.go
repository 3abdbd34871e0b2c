package services

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"portfolio-backend/internal/log"
	"portfolio-backend/internal/models"
)

type EmailService struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	devMode bool
	send    func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(host, port, user, pass, from string) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		log.Warnf("⚠ Email service running in DEV MODE (logging to console)")
	}
	return &EmailService{
		host:    host,
		port:    port,
		user:    user,
		pass:    pass,
		from:    from,
		devMode: devMode,
		send:    smtp.SendMail,
	}
}

// SendContactMessage forwards a contact form submission to the site owner.
// Replies go straight to the visitor through Reply-To.
func (s *EmailService) SendContactMessage(to string, req models.ContactRequest) error {
	subject := fmt.Sprintf("New Portfolio Message from %s: %s", req.Name, req.Subject)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #0f172a;">
  <div style="max-width: 520px; margin: 40px auto; background: #1e293b; border-radius: 12px; overflow: hidden;">
    <div style="background: linear-gradient(135deg, #a855f7 0%%, #6366f1 100%%); padding: 24px;">
      <h1 style="color: white; margin: 0; font-size: 20px;">%s</h1>
    </div>
    <div style="padding: 24px; color: #e2e8f0; font-size: 14px; line-height: 1.6;">
      <p style="margin: 0 0 8px;"><strong>From:</strong> %s &lt;%s&gt;</p>
      <p style="margin: 0 0 16px;"><strong>Subject:</strong> %s</p>
      <p style="margin: 0; white-space: pre-wrap;">%s</p>
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(subject),
		html.EscapeString(req.Name), html.EscapeString(req.Email),
		html.EscapeString(req.Subject), html.EscapeString(req.Message))

	return s.sendHTML(to, req.Email, subject, body)
}

func (s *EmailService) sendHTML(to, replyTo, subject, htmlBody string) error {
	if s.devMode {
		log.Infow("📧 [DEV EMAIL]", "to", to, "reply_to", replyTo, "subject", subject)
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Reply-To: %s", sanitizeHeader(replyTo)),
		fmt.Sprintf("Subject: %s", sanitizeHeader(subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := s.send(addr, auth, s.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Infof("📧 Email sent to %s: %s", to, subject)
	return nil
}

// sanitizeHeader keeps visitor input from injecting extra headers.
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
