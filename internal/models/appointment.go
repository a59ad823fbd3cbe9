package models

// AppointmentStatus is the booking state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusUpcoming  AppointmentStatus = "upcoming"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// ReminderEligibleStatuses lists the statuses that still get reminders.
var ReminderEligibleStatuses = []AppointmentStatus{
	AppointmentStatusUpcoming,
	AppointmentStatusConfirmed,
}

// IsReminderEligible reports whether an appointment in this status should be reminded.
func (s AppointmentStatus) IsReminderEligible() bool {
	return s == AppointmentStatusUpcoming || s == AppointmentStatusConfirmed
}

// Appointment is a booked visit. Date and Time are naive local values
// ("2006-01-02" and "15:04" or "15:04:05") exactly as the booking app stores them.
type Appointment struct {
	ID         string            `json:"id" db:"id"`
	UserID     string            `json:"user_id" db:"user_id"`
	DoctorName string            `json:"doctor_name" db:"doctor_name"`
	ClinicName string            `json:"clinic_name" db:"clinic_name"`
	Date       string            `json:"date" db:"date"`
	Time       string            `json:"time" db:"time"`
	Status     AppointmentStatus `json:"status" db:"status"`
}
