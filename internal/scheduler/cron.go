package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ms-reminders/internal/models"
	"ms-reminders/internal/reminder"
)

// Runner runs one named sweep.
type Runner interface {
	Run(ctx context.Context, kind models.SweepKind, now time.Time) (reminder.SweepResult, error)
}

// Cron runs both sweeps in-process on a cron spec. A tick that arrives while the
// previous run of the same sweep is still going is skipped.
type Cron struct {
	cron   *cron.Cron
	runner Runner
	logger *zap.Logger
	now    func() time.Time

	// ctx is the Start context; scheduled runs are cancelled with it.
	ctx context.Context
}

func NewCron(spec string, loc *time.Location, runner Runner, logger *zap.Logger) (*Cron, error) {
	logger = logger.With(zap.String("component", "cron"))
	clog := cronLogger{logger}

	c := &Cron{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(clog),
			cron.WithChain(cron.Recover(clog)),
		),
		runner: runner,
		logger: logger,
		now:    time.Now,
		ctx:    context.Background(),
	}

	for _, kind := range []models.SweepKind{models.SweepAppointment, models.SweepMedication} {
		job := cron.NewChain(cron.SkipIfStillRunning(clog)).Then(c.job(kind))
		if _, err := c.cron.AddJob(spec, job); err != nil {
			return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
		}
	}
	return c, nil
}

func (c *Cron) job(kind models.SweepKind) cron.Job {
	return cron.FuncJob(func() {
		c.runOnce(c.ctx, kind)
	})
}

func (c *Cron) runOnce(ctx context.Context, kind models.SweepKind) {
	if _, err := c.runner.Run(ctx, kind, c.now()); err != nil {
		c.logger.Error("Scheduled sweep failed", zap.String("sweep", string(kind)), zap.Error(err))
	}
}

// Start runs the scheduler until ctx is cancelled, then waits for running sweeps.
func (c *Cron) Start(ctx context.Context) {
	c.ctx = ctx
	c.cron.Start()
	c.logger.Info("Sweep cron started", zap.Int("jobs", len(c.cron.Entries())))

	<-ctx.Done()
	<-c.cron.Stop().Done()
	c.logger.Info("Sweep cron stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
