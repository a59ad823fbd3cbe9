package reminder

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ms-reminders/internal/models"
)

// Dispatcher delivers a recorded notification out of band. Delivery is best-effort:
// the in-app notification already exists when Dispatch is called.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// NopDispatcher records nothing and never fails. It is the default while email
// credentials are not configured.
type NopDispatcher struct {
	Logger *zap.Logger
}

func (d NopDispatcher) Dispatch(_ context.Context, n models.Notification) error {
	if d.Logger != nil {
		d.Logger.Debug("External dispatch disabled, notification kept in-app only",
			zap.String("notification_id", n.ID),
			zap.String("type", string(n.Type)))
	}
	return nil
}

// MultiDispatcher fans a notification out to every dispatcher and joins their errors.
type MultiDispatcher []Dispatcher

func (m MultiDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
