package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusEligibility(t *testing.T) {
	assert.True(t, AppointmentStatusUpcoming.IsReminderEligible())
	assert.True(t, AppointmentStatusConfirmed.IsReminderEligible())
	assert.False(t, AppointmentStatusCompleted.IsReminderEligible())
	assert.False(t, AppointmentStatusCancelled.IsReminderEligible())
	assert.False(t, AppointmentStatus("").IsReminderEligible())
}

func TestNotificationTypeScan(t *testing.T) {
	var nt NotificationType

	assert.NoError(t, nt.Scan([]byte("medication_reminder")))
	assert.Equal(t, NotificationTypeMedicationReminder, nt)

	assert.NoError(t, nt.Scan("appointment_reminder"))
	assert.Equal(t, NotificationTypeAppointmentReminder, nt)

	assert.NoError(t, nt.Scan(nil))
	assert.Equal(t, NotificationType(""), nt)

	assert.Error(t, nt.Scan(42))
}
