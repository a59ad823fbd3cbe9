package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// NotificationType tags the reminder category in the notification log
type NotificationType string

const (
	NotificationTypeAppointmentReminder NotificationType = "appointment_reminder"
	NotificationTypeMedicationReminder  NotificationType = "medication_reminder"
)

// Scan implements the sql.Scanner interface for NotificationType
func (nt *NotificationType) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*nt = ""
	case string:
		*nt = NotificationType(v)
	case []byte:
		*nt = NotificationType(v)
	default:
		return fmt.Errorf("cannot scan %T into NotificationType", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for NotificationType
func (nt NotificationType) Value() (driver.Value, error) {
	return string(nt), nil
}

// Notification is one in-app notification row.
type Notification struct {
	ID           string           `json:"id" db:"id"`
	UserID       string           `json:"user_id" db:"user_id"`
	Type         NotificationType `json:"type" db:"type"`
	RelatedID    string           `json:"related_id" db:"related_id"`
	Title        string           `json:"title" db:"title"`
	Message      string           `json:"message" db:"message"`
	ScheduledFor time.Time        `json:"scheduled_for" db:"scheduled_for"`
	SentAt       *time.Time       `json:"sent_at,omitempty" db:"sent_at"`
	ReadAt       *time.Time       `json:"read_at,omitempty" db:"read_at"`
	// DedupKey is unique per (related_id, type, reminder window).
	DedupKey  string    `json:"-" db:"dedup_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
