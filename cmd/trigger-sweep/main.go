// Command trigger-sweep drops a sweep trigger on the reminder trigger queue,
// the same message the EventBridge schedules send.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"ms-reminders/internal/config"
	"ms-reminders/internal/logger"
	"ms-reminders/internal/models"
	"ms-reminders/internal/sqsutil"
)

func main() {
	sweep := flag.String("sweep", "appointment", "Sweep to trigger: appointment, medication")
	flag.Parse()

	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	logger.LogConfigLoad(zl, cfg.EnvFile, cfg.Warnings)

	kind := models.SweepKind(*sweep)
	if kind != models.SweepAppointment && kind != models.SweepMedication {
		zl.Fatal("Unknown sweep, expected appointment or medication", zap.String("sweep", *sweep))
	}
	if cfg.SQSReminderTriggerQueueURL == "" {
		zl.Fatal("AWS_SQS_REMINDER_TRIGGER_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := cfg.AWSConfig(ctx)
	if err != nil {
		zl.Fatal("Failed to load AWS config", zap.Error(err))
	}
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})

	id, err := sqsutil.SendJSON(ctx, client, cfg.SQSReminderTriggerQueueURL, models.SQSSweepTriggerMessageBody{Sweep: kind})
	if err != nil {
		zl.Fatal("Failed to send sweep trigger", zap.Error(err))
	}
	zl.Info("Sent sweep trigger",
		zap.String("sweep", string(kind)),
		zap.String("queue", cfg.SQSReminderTriggerQueueURL),
		zap.String("message_id", id))
}
