package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsscheduler "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ms-reminders/internal/config"
	"ms-reminders/internal/email"
	"ms-reminders/internal/email/templates"
	"ms-reminders/internal/eventbridge"
	"ms-reminders/internal/handlers"
	"ms-reminders/internal/kafka"
	"ms-reminders/internal/logger"
	"ms-reminders/internal/metrics"
	"ms-reminders/internal/models"
	"ms-reminders/internal/reminder"
	"ms-reminders/internal/scheduler"
	"ms-reminders/internal/services"
)

func main() {
	installSchedules := flag.Bool("install-schedules", false, "Create or update the EventBridge sweep schedules and exit")
	removeSchedules := flag.Bool("remove-schedules", false, "Delete the EventBridge sweep schedules and exit")
	migrate := flag.Bool("migrate", true, "Apply pending database migrations on startup")
	flag.Parse()

	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	logger.LogConfigLoad(zl, cfg.EnvFile, cfg.Warnings)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *installSchedules || *removeSchedules {
		if err := manageSchedules(ctx, cfg, zl, *removeSchedules); err != nil {
			zl.Fatal("Schedule management failed", zap.Error(err))
		}
		return
	}

	dbService, err := services.NewDatabaseService(services.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		DBName:   cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}, zl)
	if err != nil {
		zl.Fatal("Failed to initialize database service", zap.Error(err))
	}
	defer dbService.Close()

	if *migrate {
		if err := dbService.RunMigrations(); err != nil {
			zl.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		zl.Warn("Falling back to the process timezone", zap.Error(err))
	}
	zl.Info("Sweep timezone", zap.String("zone", loc.String()))

	repo := services.NewReminderRepository(dbService.DB)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []reminder.Option{
		reminder.WithLocation(loc),
		reminder.WithConcurrency(cfg.SweepConcurrency),
		reminder.WithTimeout(cfg.SweepTimeout),
		reminder.WithRecorder(metrics.NewSweepMetrics(registry)),
	}

	healthHandler := handlers.NewHealthHandler(dbService, zl)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		opts = append(opts, reminder.WithClaimer(reminder.NewRedisClaimer(rdb)))
		healthHandler.AddReadinessCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		zl.Info("Redis dedup claims enabled", zap.String("addr", cfg.RedisAddr))
	}

	var dispatchers reminder.MultiDispatcher
	if cfg.EmailEnabled {
		emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName, zl)
		dispatchers = append(dispatchers, email.NewEmailManager(emailService, templates.NewStandardTemplateGenerator(), repo, zl))
		zl.Info("Email reminders enabled", zap.String("smtp_host", cfg.SMTPHost))
	}
	if publisher := kafka.NewNotificationPublisher(cfg.KafkaURL, cfg.NotificationsKafkaTopic, zl); publisher != nil {
		defer publisher.Close()
		dispatchers = append(dispatchers, publisher)
	}
	if len(dispatchers) > 0 {
		opts = append(opts, reminder.WithDispatcher(dispatchers))
	}

	sweeper := reminder.NewSweeper(repo, zl, opts...)

	var wg sync.WaitGroup

	if cfg.SQSReminderTriggerQueueURL != "" {
		awsCfg, err := cfg.AWSConfig(ctx)
		if err != nil {
			zl.Fatal("Unable to load AWS SDK config", zap.Error(err))
		}
		sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.AWSEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			}
		})

		processor := reminder.NewProcessor(sqsClient, cfg.SQSReminderTriggerQueueURL, sweeper, zl)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := processor.ProcessMessages(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("Sweep trigger processor stopped", zap.Error(err))
			}
		}()
	} else {
		zl.Info("Reminder trigger queue URL not configured, skipping SQS trigger processor")
	}

	if cfg.SweepCron != "" {
		sweepCron, err := scheduler.NewCron(cfg.SweepCron, loc, sweeper, zl)
		if err != nil {
			zl.Fatal("Failed to set up sweep cron", zap.Error(err))
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweepCron.Start(ctx)
		}()
	} else {
		zl.Info("SWEEP_CRON empty, sweeps run only when triggered")
	}

	router := handlers.NewRouter(cfg, handlers.NewReminderHandler(sweeper, zl), healthHandler, registry, zl)
	server := &http.Server{
		Addr:              cfg.ServerHost + ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("Starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SweepTimeout+10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	wg.Wait()
}

func manageSchedules(ctx context.Context, cfg config.Config, zl *zap.Logger, remove bool) error {
	awsCfg, err := cfg.AWSConfig(ctx)
	if err != nil {
		return err
	}
	client := awsscheduler.NewFromConfig(awsCfg, func(o *awsscheduler.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})
	svc := eventbridge.NewService(cfg, client, zl)

	if !remove {
		return svc.EnsureSweepSchedules(ctx)
	}
	var errs []error
	for _, kind := range []models.SweepKind{models.SweepAppointment, models.SweepMedication} {
		if err := svc.DeleteSweepSchedule(ctx, kind); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
