package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. Development mode writes human-readable console
// output; anything else gets JSON suitable for log shipping.
func New(level, env string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l.With(zap.String("service", "ms-reminders")), nil
}

// LogConfigLoad reports where configuration came from and any values that fell
// back to their defaults.
func LogConfigLoad(l *zap.Logger, envFile string, warnings []string) {
	if envFile != "" {
		l.Info("Loaded environment variables", zap.String("path", envFile))
	} else {
		l.Info("No .env file found, using environment variables")
	}
	for _, w := range warnings {
		l.Warn("Ignoring invalid configuration value", zap.String("detail", w))
	}
}
