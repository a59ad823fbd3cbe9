package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"ms-reminders/internal/config"
	"ms-reminders/internal/logger"
	"ms-reminders/internal/services"
)

func main() {
	var command = flag.String("command", "up", "Migration command: up, status")
	flag.Parse()

	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	logger.LogConfigLoad(zl, cfg.EnvFile, cfg.Warnings)

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

	switch *command {
	case "up":
		zl.Info("Running migrations")
		if err := dbService.RunMigrations(); err != nil {
			zl.Fatal("Migration failed", zap.Error(err))
		}

	case "status":
		if err := dbService.MigrationStatus(); err != nil {
			zl.Fatal("Failed to get migration status", zap.Error(err))
		}

	default:
		zl.Error("Unknown command, available commands: up, status", zap.String("command", *command))
		os.Exit(1)
	}
}
