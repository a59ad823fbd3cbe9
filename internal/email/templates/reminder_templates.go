package templates

import (
	"ms-reminders/internal/email"
	"ms-reminders/internal/email/builders"
	"ms-reminders/internal/models"
)

const (
	brandName  = "AyurCare"
	brandColor = "#2F855A"
)

func greeting(recipientName string) string {
	if recipientName == "" {
		return "Hello,"
	}
	return "Hello " + recipientName + ","
}

// GenerateAppointmentReminderEmail renders an appointment reminder notification as email.
func GenerateAppointmentReminderEmail(n models.Notification, recipientName string) email.EmailTemplate {
	builder := builders.NewEmailBuilder(brandName, brandColor)

	builder.SetHeader(n.Title, "Your upcoming consultation")
	builder.AddParagraph(greeting(recipientName))
	builder.AddInfoBox(n.Message, "info")
	builder.AddDivider()
	builder.AddParagraph("If you can no longer attend, please cancel or reschedule from your appointments page so the slot can be offered to another patient.")

	return email.EmailTemplate{
		Type:    email.EmailAppointmentReminder,
		Subject: n.Title + " - " + brandName,
		HTML:    builder.Build(),
	}
}

// GenerateMedicationReminderEmail renders a daily medication reminder notification as email.
func GenerateMedicationReminderEmail(n models.Notification, recipientName string) email.EmailTemplate {
	builder := builders.NewEmailBuilder(brandName, brandColor)

	builder.SetHeader(n.Title, "Your daily medication")
	builder.AddParagraph(greeting(recipientName))
	builder.AddInfoBox(n.Message, "success")
	builder.AddDetailsList([]builders.Detail{
		{Label: "Date", Value: n.ScheduledFor.Format("Monday, January 2, 2006")},
	})
	builder.AddDivider()
	builder.AddParagraph("You will receive one reminder per day while the prescription is active.")

	return email.EmailTemplate{
		Type:    email.EmailMedicationReminder,
		Subject: n.Title + " - " + brandName,
		HTML:    builder.Build(),
	}
}
