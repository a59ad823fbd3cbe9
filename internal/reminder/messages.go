package reminder

import (
	"fmt"
	"strings"
	"time"

	"ms-reminders/internal/models"
)

const (
	displayDateLayout = "Monday, January 2"
	displayTimeLayout = "3:04 PM"
)

// appointmentMessage renders the in-app title and body for an appointment reminder.
func appointmentMessage(a models.Appointment, window Window, at time.Time) (title, message string) {
	doctor := fallback(a.DoctorName, "your doctor")
	clinic := fallback(a.ClinicName, "the clinic")

	switch window {
	case WindowOneHour:
		return "Appointment in 1 hour",
			fmt.Sprintf("Your appointment with %s at %s starts at %s today.",
				doctor, clinic, at.Format(displayTimeLayout))
	default:
		return "Appointment tomorrow",
			fmt.Sprintf("Reminder: you have an appointment with %s at %s on %s at %s.",
				doctor, clinic, at.Format(displayDateLayout), at.Format(displayTimeLayout))
	}
}

// medicationMessage renders the daily medication reminder text.
func medicationMessage(p models.Prescription) (title, message string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Time to take %s", fallback(p.Medication, "your medication"))
	if p.Dosage != "" {
		fmt.Fprintf(&b, " (%s)", p.Dosage)
	}
	if p.Frequency != "" {
		fmt.Fprintf(&b, ", %s", p.Frequency)
	}
	b.WriteString(".")
	if p.Doctor != nil && strings.TrimSpace(*p.Doctor) != "" {
		fmt.Fprintf(&b, " Prescribed by %s.", strings.TrimSpace(*p.Doctor))
	}
	return "Medication reminder", b.String()
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
