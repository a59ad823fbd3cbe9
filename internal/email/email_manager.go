package email

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"ms-reminders/internal/circuitbreaker"
	"ms-reminders/internal/models"
)

// EmailSender is an interface for sending emails (to avoid circular dependency)
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// TemplateGenerator renders a recorded notification as an email
type TemplateGenerator interface {
	GenerateReminderEmail(n models.Notification, recipientName string) (EmailTemplate, error)
}

// RecipientResolver looks up where a user's email goes
type RecipientResolver interface {
	GetUserContact(ctx context.Context, userID string) (email, name string, err error)
}

// EmailManager sends reminder emails for recorded notifications. SMTP calls go
// through a circuit breaker so an outage fails fast for the rest of a sweep.
type EmailManager struct {
	emailSender       EmailSender
	templateGenerator TemplateGenerator
	recipients        RecipientResolver
	breaker           *gobreaker.CircuitBreaker
	logger            *zap.Logger
}

func NewEmailManager(emailSender EmailSender, templateGen TemplateGenerator, recipients RecipientResolver, logger *zap.Logger) *EmailManager {
	logger = logger.With(zap.String("component", "email"))
	return &EmailManager{
		emailSender:       emailSender,
		templateGenerator: templateGen,
		recipients:        recipients,
		breaker:           circuitbreaker.NewCircuitBreaker("smtp", logger),
		logger:            logger,
	}
}

// Dispatch emails the user a copy of n. Users without an address on file are skipped.
func (m *EmailManager) Dispatch(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	to, name, err := m.recipients.GetUserContact(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolving email recipient for user %s: %w", n.UserID, err)
	}
	if to == "" {
		m.logger.Debug("No email address on file, skipping", zap.String("user_id", n.UserID))
		return nil
	}

	template, err := m.templateGenerator.GenerateReminderEmail(n, name)
	if err != nil {
		return err
	}
	return m.SendEmail(to, template)
}

// SendEmail sends an email using the provided template
func (m *EmailManager) SendEmail(to string, template EmailTemplate) error {
	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.emailSender.SendEmail(to, template.Subject, template.HTML)
	})
	if err != nil {
		m.logger.Warn("Failed to send email", zap.String("type", template.Type.String()), zap.Error(err))
		return fmt.Errorf("sending %s email: %w", template.Type, err)
	}

	m.logger.Debug("Sent email", zap.String("type", template.Type.String()))
	return nil
}
