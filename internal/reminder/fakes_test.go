package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"ms-reminders/internal/models"
)

// memStore is an in-memory Store with a unique dedup key, like the Postgres table.
type memStore struct {
	mu            sync.Mutex
	appointments  []models.Appointment
	prescriptions []models.Prescription
	notifications []models.Notification

	listErr   error
	findErr   error
	insertErr error
}

func (s *memStore) ListReminderAppointments(_ context.Context, fromDate, toDate string) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Appointment
	for _, a := range s.appointments {
		if a.Status.IsReminderEligible() && a.Date >= fromDate && a.Date <= toDate {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) ListActivePrescriptions(_ context.Context, today string) ([]models.Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Prescription
	for _, p := range s.prescriptions {
		if p.StartDate <= today && (p.EndDate == nil || *p.EndDate >= today) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) FindRecentNotification(_ context.Context, relatedID string, nt models.NotificationType, since time.Time) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.notifications {
		n := s.notifications[i]
		if n.RelatedID == relatedID && n.Type == nt && n.SentAt != nil && !n.SentAt.Before(since) {
			return &n, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertNotification(_ context.Context, n *models.Notification) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	for _, existing := range s.notifications {
		if existing.DedupKey == n.DedupKey {
			return "", ErrDuplicateNotification
		}
	}
	s.notifications = append(s.notifications, *n)
	return n.ID, nil
}

func (s *memStore) saved() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) ObserveSweep(res SweepResult, elapsed time.Duration, err error) {
	m.Called(res, elapsed, err)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
