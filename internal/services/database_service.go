package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"ms-reminders/internal/migrations"
)

type DatabaseService struct {
	DB       *sqlx.DB
	migrator *migrations.Migrator
	logger   *zap.Logger
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func NewDatabaseService(config DatabaseConfig, logger *zap.Logger) (*DatabaseService, error) {
	db, err := sqlx.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database", zap.String("host", config.Host), zap.String("database", config.DBName))

	return &DatabaseService{
		DB:       db,
		migrator: migrations.NewMigrator(db.DB, migrations.Files(), logger),
		logger:   logger,
	}, nil
}

func (d *DatabaseService) Close() error {
	return d.DB.Close()
}

// Ping reports whether the database is reachable; used by the readiness probe.
func (d *DatabaseService) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// RunMigrations applies all pending database migrations
func (d *DatabaseService) RunMigrations() error {
	return d.migrator.RunMigrations()
}

// MigrationStatus shows current migration status
func (d *DatabaseService) MigrationStatus() error {
	return d.migrator.Status()
}
