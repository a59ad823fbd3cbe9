package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"
	"go.uber.org/zap"

	appconfig "ms-reminders/internal/config"
	"ms-reminders/internal/models"
)

const scheduleNamePrefix = "reminder-sweep-"

// SchedulerAPI is the subset of *scheduler.Client used here.
type SchedulerAPI interface {
	CreateSchedule(ctx context.Context, params *scheduler.CreateScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.CreateScheduleOutput, error)
	UpdateSchedule(ctx context.Context, params *scheduler.UpdateScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.UpdateScheduleOutput, error)
	DeleteSchedule(ctx context.Context, params *scheduler.DeleteScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.DeleteScheduleOutput, error)
}

// Service installs the recurring EventBridge schedules that drop sweep triggers
// on the reminder trigger queue.
type Service struct {
	SchedulerClient SchedulerAPI
	Config          appconfig.Config
	logger          *zap.Logger
}

func NewService(cfg appconfig.Config, schedulerClient SchedulerAPI, logger *zap.Logger) *Service {
	return &Service{
		SchedulerClient: schedulerClient,
		Config:          cfg,
		logger:          logger.With(zap.String("component", "eventbridge")),
	}
}

func ScheduleName(kind models.SweepKind) string {
	return scheduleNamePrefix + string(kind)
}

// EnsureSweepSchedules installs schedules for both sweeps.
func (s *Service) EnsureSweepSchedules(ctx context.Context) error {
	var errs []error
	for _, kind := range []models.SweepKind{models.SweepAppointment, models.SweepMedication} {
		if err := s.EnsureSweepSchedule(ctx, kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EnsureSweepSchedule creates the recurring schedule for kind, or updates it
// when it already exists.
func (s *Service) EnsureSweepSchedule(ctx context.Context, kind models.SweepKind) error {
	if s.Config.SQSReminderTriggerQueueARN == "" || s.Config.SchedulerRoleARN == "" {
		return errors.New("reminder trigger queue ARN and scheduler role ARN are required")
	}

	scheduleName := ScheduleName(kind)
	inputJSON, err := json.Marshal(models.SQSSweepTriggerMessageBody{Sweep: kind})
	if err != nil {
		return fmt.Errorf("marshal sweep trigger: %w", err)
	}

	target := &types.Target{
		Arn:     aws.String(s.Config.SQSReminderTriggerQueueARN),
		RoleArn: aws.String(s.Config.SchedulerRoleARN),
		Input:   aws.String(string(inputJSON)),
	}
	expression := aws.String(s.Config.ReminderScheduleExpression)
	window := &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff}

	_, err = s.SchedulerClient.CreateSchedule(ctx, &scheduler.CreateScheduleInput{
		Name:                       aws.String(scheduleName),
		GroupName:                  aws.String(s.Config.SchedulerGroupName),
		ScheduleExpression:         expression,
		ScheduleExpressionTimezone: aws.String("UTC"),
		Target:                     target,
		FlexibleTimeWindow:         window,
	})
	if err == nil {
		s.logger.Info("Created sweep schedule", zap.String("schedule", scheduleName), zap.String("expression", *expression))
		return nil
	}

	var conflict *types.ConflictException
	if !errors.As(err, &conflict) {
		return fmt.Errorf("create schedule %s: %w", scheduleName, err)
	}

	s.logger.Info("Sweep schedule already exists, updating", zap.String("schedule", scheduleName))
	_, err = s.SchedulerClient.UpdateSchedule(ctx, &scheduler.UpdateScheduleInput{
		Name:                       aws.String(scheduleName),
		GroupName:                  aws.String(s.Config.SchedulerGroupName),
		ScheduleExpression:         expression,
		ScheduleExpressionTimezone: aws.String("UTC"),
		Target:                     target,
		FlexibleTimeWindow:         window,
	})
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", scheduleName, err)
	}
	s.logger.Info("Updated sweep schedule", zap.String("schedule", scheduleName), zap.String("expression", *expression))
	return nil
}

// DeleteSweepSchedule removes the schedule for kind. A missing schedule is not an error.
func (s *Service) DeleteSweepSchedule(ctx context.Context, kind models.SweepKind) error {
	scheduleName := ScheduleName(kind)

	_, err := s.SchedulerClient.DeleteSchedule(ctx, &scheduler.DeleteScheduleInput{
		Name:      aws.String(scheduleName),
		GroupName: aws.String(s.Config.SchedulerGroupName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			s.logger.Info("Sweep schedule not found for deletion", zap.String("schedule", scheduleName))
			return nil
		}
		return fmt.Errorf("delete schedule %s: %w", scheduleName, err)
	}

	s.logger.Info("Deleted sweep schedule", zap.String("schedule", scheduleName))
	return nil
}
