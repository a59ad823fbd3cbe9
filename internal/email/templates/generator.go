package templates

import (
	"fmt"

	"ms-reminders/internal/email"
	"ms-reminders/internal/models"
)

// StandardTemplateGenerator implements email.TemplateGenerator
type StandardTemplateGenerator struct{}

func NewStandardTemplateGenerator() *StandardTemplateGenerator {
	return &StandardTemplateGenerator{}
}

func (g *StandardTemplateGenerator) GenerateReminderEmail(n models.Notification, recipientName string) (email.EmailTemplate, error) {
	switch n.Type {
	case models.NotificationTypeAppointmentReminder:
		return GenerateAppointmentReminderEmail(n, recipientName), nil
	case models.NotificationTypeMedicationReminder:
		return GenerateMedicationReminderEmail(n, recipientName), nil
	default:
		return email.EmailTemplate{}, fmt.Errorf("no email template for notification type %q", n.Type)
	}
}
