package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type EmailService struct {
	SMTPHost  string
	SMTPPort  string
	Username  string
	Password  string
	FromEmail string
	FromName  string

	logger   *zap.Logger
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(smtpHost, smtpPort, username, password, fromEmail, fromName string, logger *zap.Logger) *EmailService {
	return &EmailService{
		SMTPHost:  smtpHost,
		SMTPPort:  smtpPort,
		Username:  username,
		Password:  password,
		FromEmail: fromEmail,
		FromName:  fromName,
		logger:    logger,
		sendMail:  smtp.SendMail,
	}
}

// SendEmail sends an HTML email over SMTP
func (e *EmailService) SendEmail(to, subject, htmlBody string) error {
	smtpServer := fmt.Sprintf("%s:%s", e.SMTPHost, e.SMTPPort)

	var auth smtp.Auth
	if e.Username != "" {
		auth = smtp.PlainAuth("", e.Username, e.Password, e.SMTPHost)
	}

	if err := e.sendMail(smtpServer, auth, e.FromEmail, []string{to}, e.composeMessage(to, subject, htmlBody)); err != nil {
		e.logger.Warn("Failed to send email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	e.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (e *EmailService) composeMessage(to, subject, htmlBody string) []byte {
	from := e.FromEmail
	if e.FromName != "" {
		from = fmt.Sprintf("%s <%s>", e.FromName, e.FromEmail)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
