package reminder

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ms-reminders/internal/models"
)

// Store is the data access the sweeps need from the persistence layer.
type Store interface {
	NotificationLog
	// ListReminderAppointments returns upcoming/confirmed appointments dated fromDate..toDate inclusive.
	ListReminderAppointments(ctx context.Context, fromDate, toDate string) ([]models.Appointment, error)
	// ListActivePrescriptions returns prescriptions whose date range covers today.
	ListActivePrescriptions(ctx context.Context, today string) ([]models.Prescription, error)
	// InsertNotification writes n and returns its id, or ErrDuplicateNotification
	// when a row with the same dedup key exists.
	InsertNotification(ctx context.Context, n *models.Notification) (string, error)
}

// Recorder observes finished sweep runs (metrics).
type Recorder interface {
	ObserveSweep(res SweepResult, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSweep(SweepResult, time.Duration, error) {}

const (
	defaultConcurrency = 8
	releaseTimeout     = 5 * time.Second
)

// Sweeper runs the appointment and medication reminder sweeps. It keeps no state
// between runs; everything it needs to stay idempotent lives in the notification log.
type Sweeper struct {
	store       Store
	guard       *Guard
	dispatcher  Dispatcher
	recorder    Recorder
	logger      *zap.Logger
	loc         *time.Location
	concurrency int
	timeout     time.Duration
}

type Option func(*Sweeper)

func WithClaimer(c Claimer) Option { return func(s *Sweeper) { s.guard = NewGuard(s.store, c) } }

func WithDispatcher(d Dispatcher) Option { return func(s *Sweeper) { s.dispatcher = d } }

func WithRecorder(r Recorder) Option { return func(s *Sweeper) { s.recorder = r } }

func WithLocation(loc *time.Location) Option { return func(s *Sweeper) { s.loc = loc } }

func WithConcurrency(n int) Option { return func(s *Sweeper) { s.concurrency = n } }

// WithTimeout bounds a whole run. Zero means the caller's context is the only limit.
func WithTimeout(d time.Duration) Option { return func(s *Sweeper) { s.timeout = d } }

func NewSweeper(store Store, logger *zap.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:       store,
		guard:       NewGuard(store, nil),
		dispatcher:  NopDispatcher{Logger: logger},
		recorder:    nopRecorder{},
		logger:      logger,
		loc:         time.Local,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s
}

// Run dispatches to the sweep named by kind.
func (s *Sweeper) Run(ctx context.Context, kind models.SweepKind, now time.Time) (SweepResult, error) {
	switch kind {
	case models.SweepAppointment:
		return s.RunAppointmentSweep(ctx, now)
	case models.SweepMedication:
		return s.RunMedicationSweep(ctx, now)
	default:
		return SweepResult{Sweep: kind}, fmt.Errorf("%w: %q", ErrUnknownSweep, kind)
	}
}

// RunAppointmentSweep records 24-hour and 1-hour appointment reminders that are due at now.
func (s *Sweeper) RunAppointmentSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	now = now.In(s.loc)
	from := now.Format(dateLayout)
	to := now.Add(24 * time.Hour).Format(dateLayout)

	return s.run(ctx, models.SweepAppointment, now, func(ctx context.Context) ([]candidate, error) {
		appointments, err := s.store.ListReminderAppointments(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("listing appointments %s..%s: %w", from, to, err)
		}
		out := make([]candidate, 0, len(appointments))
		for _, a := range appointments {
			out = append(out, candidate{
				id:   a.ID,
				plan: func() (*models.Notification, error) { return planAppointment(a, now) },
			})
		}
		return out, nil
	})
}

// RunMedicationSweep records one medication reminder per active prescription per day.
func (s *Sweeper) RunMedicationSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	now = now.In(s.loc)
	today := now.Format(dateLayout)

	return s.run(ctx, models.SweepMedication, now, func(ctx context.Context) ([]candidate, error) {
		prescriptions, err := s.store.ListActivePrescriptions(ctx, today)
		if err != nil {
			return nil, fmt.Errorf("listing prescriptions active on %s: %w", today, err)
		}
		out := make([]candidate, 0, len(prescriptions))
		for _, p := range prescriptions {
			out = append(out, candidate{
				id:   p.ID,
				plan: func() (*models.Notification, error) { return planPrescription(p, now) },
			})
		}
		return out, nil
	})
}

// candidate defers policy evaluation so it runs inside the worker.
type candidate struct {
	id   string
	plan func() (*models.Notification, error)
}

type outcome int

const (
	outcomeNotDue outcome = iota
	outcomeCreated
	outcomeSuppressed
	outcomeFailed
)

func (s *Sweeper) run(ctx context.Context, kind models.SweepKind, now time.Time, fetch func(context.Context) ([]candidate, error)) (res SweepResult, err error) {
	started := time.Now()
	res = SweepResult{Sweep: kind, Errors: []*ItemError{}}
	defer func() { s.recorder.ObserveSweep(res, time.Since(started), err) }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	candidates, err := fetch(ctx)
	if err != nil {
		s.logger.Error("Reminder sweep failed to fetch candidates", zap.String("sweep", string(kind)), zap.Error(err))
		return res, err
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			o, itemErr := s.process(ctx, c, now)

			mu.Lock()
			defer mu.Unlock()
			res.Examined++
			switch o {
			case outcomeCreated:
				res.Created++
			case outcomeSuppressed:
				res.Suppressed++
			}
			if itemErr != nil {
				res.Errors = append(res.Errors, itemErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(res.Errors, func(a, b *ItemError) int {
		return cmp.Or(cmp.Compare(a.ID, b.ID), cmp.Compare(a.Kind, b.Kind))
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logger.Warn("Reminder sweep stopped before all candidates were processed",
			zap.String("sweep", string(kind)),
			zap.Int("candidates", len(candidates)),
			zap.Int("examined", res.Examined),
			zap.Error(ctxErr))
		return res, fmt.Errorf("%s sweep interrupted after %d of %d candidates: %w", kind, res.Examined, len(candidates), ctxErr)
	}

	s.logger.Info("Reminder sweep finished",
		zap.String("sweep", string(kind)),
		zap.Int("examined", res.Examined),
		zap.Int("created", res.Created),
		zap.Int("suppressed", res.Suppressed),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("elapsed", time.Since(started)))
	return res, nil
}

func (s *Sweeper) process(ctx context.Context, c candidate, now time.Time) (outcome, *ItemError) {
	n, err := c.plan()
	if err != nil {
		s.logger.Warn("Skipping record with unreadable schedule", zap.String("id", c.id), zap.Error(err))
		return outcomeFailed, &ItemError{ID: c.id, Kind: ErrorKindEvaluate, Err: err}
	}
	if n == nil {
		return outcomeNotDue, nil
	}

	decision, err := s.guard.Check(ctx, n, now)
	switch decision {
	case Suppress:
		return outcomeSuppressed, nil
	case Block:
		s.logger.Warn("Dedup check failed, not sending", zap.String("id", c.id), zap.Error(err))
		var itemErr *ItemError
		if !errors.As(err, &itemErr) {
			itemErr = &ItemError{ID: c.id, Kind: ErrorKindLookup, Err: err}
		}
		return outcomeFailed, itemErr
	}

	sentAt := now
	n.ID = uuid.NewString()
	n.SentAt = &sentAt

	id, err := s.store.InsertNotification(ctx, n)
	if errors.Is(err, ErrDuplicateNotification) {
		return outcomeSuppressed, nil
	}
	if err != nil {
		if relErr := s.releaseClaim(ctx, n); relErr != nil {
			s.logger.Warn("Failed to release dedup claim", zap.String("dedup_key", n.DedupKey), zap.Error(relErr))
		}
		s.logger.Warn("Failed to record notification", zap.String("id", c.id), zap.Error(err))
		return outcomeFailed, &ItemError{ID: c.id, Kind: ErrorKindInsert, Err: err}
	}
	if id != "" {
		n.ID = id
	}

	if err := s.dispatcher.Dispatch(ctx, *n); err != nil {
		s.logger.Warn("Notification recorded but external dispatch failed",
			zap.String("id", c.id),
			zap.String("notification_id", n.ID),
			zap.Error(err))
		return outcomeCreated, &ItemError{ID: c.id, Kind: ErrorKindDispatch, Err: err}
	}
	return outcomeCreated, nil
}

// releaseClaim outlives a cancelled or timed-out run so the claim never
// outlasts a write that did not happen.
func (s *Sweeper) releaseClaim(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	return s.guard.Release(ctx, n)
}

func planAppointment(a models.Appointment, now time.Time) (*models.Notification, error) {
	window, at, err := ClassifyAppointment(a, now)
	if err != nil || window == WindowNone {
		return nil, err
	}
	title, message := appointmentMessage(a, window, at)
	return &models.Notification{
		UserID:       a.UserID,
		Type:         models.NotificationTypeAppointmentReminder,
		RelatedID:    a.ID,
		Title:        title,
		Message:      message,
		ScheduledFor: now,
		DedupKey: fmt.Sprintf("%s:%s:%s:%s",
			a.ID, models.NotificationTypeAppointmentReminder, window, at.Format("2006-01-02T15:04")),
	}, nil
}

func planPrescription(p models.Prescription, now time.Time) (*models.Notification, error) {
	active, err := IsPrescriptionActive(p, now)
	if err != nil || !active {
		return nil, err
	}
	title, message := medicationMessage(p)
	return &models.Notification{
		UserID:       p.UserID,
		Type:         models.NotificationTypeMedicationReminder,
		RelatedID:    p.ID,
		Title:        title,
		Message:      message,
		ScheduledFor: now,
		DedupKey: fmt.Sprintf("%s:%s:%s",
			p.ID, models.NotificationTypeMedicationReminder, now.Format(dateLayout)),
	}, nil
}
