package email

// EmailCategory represents the main category of the email
type EmailCategory string

const (
	CategoryAppointment EmailCategory = "APPOINTMENT"
	CategoryMedication  EmailCategory = "MEDICATION"
)

// EmailAction represents the action that triggered the email
type EmailAction string

const (
	ActionReminder EmailAction = "REMINDER"
)

// EmailType represents a specific type of email combining category and action
type EmailType struct {
	Category EmailCategory
	Action   EmailAction
}

var (
	EmailAppointmentReminder = EmailType{CategoryAppointment, ActionReminder}
	EmailMedicationReminder  = EmailType{CategoryMedication, ActionReminder}
)

// EmailTemplate represents a complete email template with subject and body
type EmailTemplate struct {
	Type    EmailType
	Subject string
	HTML    string
}

// String returns a string representation of the email type
func (et EmailType) String() string {
	return string(et.Category) + "_" + string(et.Action)
}
