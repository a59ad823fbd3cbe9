package models

import "time"

// SweepKind names one of the two reminder sweeps
type SweepKind string

const (
	SweepAppointment SweepKind = "appointment"
	SweepMedication  SweepKind = "medication"
)

// SQSSweepTriggerMessageBody is the payload the EventBridge schedules drop on the trigger queue
type SQSSweepTriggerMessageBody struct {
	Sweep SweepKind `json:"sweep"`
}

// NotificationCreatedEvent is published for realtime delivery after a reminder is recorded
type NotificationCreatedEvent struct {
	NotificationID string           `json:"notification_id"`
	UserID         string           `json:"user_id"`
	Type           NotificationType `json:"type"`
	RelatedID      string           `json:"related_id"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	SentAt         time.Time        `json:"sent_at"`
}
