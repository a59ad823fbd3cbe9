package email

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ms-reminders/internal/models"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type MockRecipientResolver struct {
	mock.Mock
}

func (m *MockRecipientResolver) GetUserContact(ctx context.Context, userID string) (string, string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.String(1), args.Error(2)
}

type stubGenerator struct{}

func (stubGenerator) GenerateReminderEmail(n models.Notification, name string) (EmailTemplate, error) {
	return EmailTemplate{Type: EmailAppointmentReminder, Subject: n.Title, HTML: "<p>" + name + "</p>"}, nil
}

func reminderNotification() models.Notification {
	return models.Notification{
		ID:     "N1",
		UserID: "U1",
		Type:   models.NotificationTypeAppointmentReminder,
		Title:  "Appointment tomorrow",
	}
}

func TestDispatchSendsToProfileAddress(t *testing.T) {
	sender := new(MockEmailSender)
	recipients := new(MockRecipientResolver)
	recipients.On("GetUserContact", mock.Anything, "U1").Return("asha@example.com", "Asha", nil)
	sender.On("SendEmail", "asha@example.com", "Appointment tomorrow", "<p>Asha</p>").Return(nil)

	m := NewEmailManager(sender, stubGenerator{}, recipients, zap.NewNop())
	require.NoError(t, m.Dispatch(context.Background(), reminderNotification()))

	sender.AssertExpectations(t)
	recipients.AssertExpectations(t)
}

func TestDispatchSkipsUsersWithoutAddress(t *testing.T) {
	sender := new(MockEmailSender)
	recipients := new(MockRecipientResolver)
	recipients.On("GetUserContact", mock.Anything, "U1").Return("", "", nil)

	m := NewEmailManager(sender, stubGenerator{}, recipients, zap.NewNop())
	require.NoError(t, m.Dispatch(context.Background(), reminderNotification()))
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchReportsLookupFailure(t *testing.T) {
	recipients := new(MockRecipientResolver)
	cause := errors.New("profile lookup timed out")
	recipients.On("GetUserContact", mock.Anything, "U1").Return("", "", cause)

	m := NewEmailManager(new(MockEmailSender), stubGenerator{}, recipients, zap.NewNop())
	assert.ErrorIs(t, m.Dispatch(context.Background(), reminderNotification()), cause)
}

func TestDispatchFailsFastOnceBreakerOpens(t *testing.T) {
	sender := new(MockEmailSender)
	recipients := new(MockRecipientResolver)
	recipients.On("GetUserContact", mock.Anything, "U1").Return("asha@example.com", "Asha", nil)
	sender.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("dial tcp: connection refused"))

	m := NewEmailManager(sender, stubGenerator{}, recipients, zap.NewNop())
	for i := 0; i < 3; i++ {
		assert.Error(t, m.Dispatch(context.Background(), reminderNotification()))
	}

	err := m.Dispatch(context.Background(), reminderNotification())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	sender.AssertNumberOfCalls(t, "SendEmail", 3)
}

func TestEmailTypeString(t *testing.T) {
	assert.Equal(t, "APPOINTMENT_REMINDER", EmailAppointmentReminder.String())
	assert.Equal(t, "MEDICATION_REMINDER", EmailMedicationReminder.String())
}
