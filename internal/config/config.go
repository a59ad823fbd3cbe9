package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerHost string
	ServerPort string
	AppEnv     string
	LogLevel   string

	// Appointment dates and times are naive local values; they are combined in this zone.
	Timezone string

	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaURL                string
	NotificationsKafkaTopic string

	EmailEnabled bool
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	AWSRegion                  string
	AWSEndpoint                string
	AWSAccessKeyID             string
	AWSSecretAccessKey         string
	SQSReminderTriggerQueueURL string
	SQSReminderTriggerQueueARN string
	SchedulerRoleARN           string
	SchedulerGroupName         string
	ReminderScheduleExpression string

	// SweepCron keeps both sweeps running in-process; keep it at 30 minutes or less
	// so every one-hour reminder window is hit at least once.
	SweepCron        string
	SweepTimeout     time.Duration
	SweepConcurrency int

	FunctionsJWTSecret string

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int

	// EnvFile is the .env file that was loaded, empty when none was found.
	EnvFile string
	// Warnings lists values that could not be parsed and fell back to their default.
	Warnings []string
}

// LoadEnv loads environment variables from the first .env file found and
// returns its path.
func LoadEnv() string {
	envPaths := []string{
		".env",
		"../.env",
	}

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads the configuration. Parse problems are collected in Warnings so the
// caller can log them once a logger exists.
func Load() Config {
	envFile := LoadEnv()
	e := &envReader{}

	cfg := Config{
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "production"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Timezone:   getEnv("APP_TIMEZONE", "Local"),

		DatabaseHost:     getEnv("DB_HOST", "localhost"),
		DatabasePort:     getEnv("DB_PORT", "5432"),
		DatabaseUser:     getEnv("DB_USER", "postgres"),
		DatabasePassword: getEnv("DB_PASSWORD", ""),
		DatabaseName:     getEnv("DB_NAME", "ayurcare"),
		DatabaseSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       e.getEnvInt("REDIS_DB", 0),

		KafkaURL:                getEnv("KAFKA_URL", ""),
		NotificationsKafkaTopic: getEnv("KAFKA_NOTIFICATIONS_TOPIC", "ayurcare.notifications.created"),

		EmailEnabled: e.getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@ayurcare.app"),
		FromName:     getEnv("FROM_NAME", "AyurCare"),

		AWSRegion:                  getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpoint:                getEnv("AWS_LOCAL_ENDPOINT_URL", ""),
		AWSAccessKeyID:             getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:         getEnv("AWS_SECRET_ACCESS_KEY", ""),
		SQSReminderTriggerQueueURL: getEnv("AWS_SQS_REMINDER_TRIGGER_URL", ""),
		SQSReminderTriggerQueueARN: getEnv("AWS_SQS_REMINDER_TRIGGER_ARN", ""),
		SchedulerRoleARN:           getEnv("AWS_SCHEDULER_ROLE_ARN", ""),
		SchedulerGroupName:         getEnv("AWS_SCHEDULER_GROUP_NAME", "default"),
		ReminderScheduleExpression: getEnv("REMINDER_SCHEDULE_EXPRESSION", "rate(15 minutes)"),

		SweepCron:        getEnv("SWEEP_CRON", "@every 15m"),
		SweepTimeout:     e.getEnvDuration("SWEEP_TIMEOUT", 50*time.Second),
		SweepConcurrency: e.getEnvInt("SWEEP_CONCURRENCY", 8),

		FunctionsJWTSecret: getEnv("FUNCTIONS_JWT_SECRET", ""),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
		MaxAge:         e.getEnvInt("CORS_MAX_AGE", 86400),

		EnvFile: envFile,
	}
	cfg.Warnings = e.warnings
	return cfg
}

// Location resolves the configured timezone. An unknown zone falls back to the
// process zone and is returned as an error for the caller to log.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("unknown APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// envReader parses typed env vars and remembers the ones it had to ignore.
type envReader struct {
	warnings []string
}

func (e *envReader) warnf(format string, args ...interface{}) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func (e *envReader) getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.warnf("env var %s is not an integer (%q), using fallback: %d", key, value, fallback)
		return fallback
	}
	return n
}

func (e *envReader) getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.warnf("env var %s is not a boolean (%q), using fallback: %t", key, value, fallback)
		return fallback
	}
	return b
}

func (e *envReader) getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.warnf("env var %s is not a duration (%q), using fallback: %s", key, value, fallback)
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
