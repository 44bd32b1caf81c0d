// Package observability provides logging utilities and the log-backed notifier.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/game/action"
)

// AppName is attached to every log entry.
const AppName = "wastehunter"

// NewLogger creates a structured logger from the given logging configuration.
// Sampling is off: every dice evaluation must reach the audit log.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
		zapCfg.InitialFields = map[string]interface{}{"app": AppName}
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Sampling = nil
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// CommandFields identifies cmd in a log entry. Item, action and formula
// fields are only present when set.
func CommandFields(cmd action.Command) []zap.Field {
	fields := []zap.Field{
		zap.String("entity", cmd.EntityID),
		zap.String("command", string(cmd.Kind)),
	}
	if cmd.ItemID != "" {
		fields = append(fields, zap.String("item", cmd.ItemID))
	}
	if cmd.Action != "" {
		fields = append(fields, zap.String("action", cmd.Action))
	}
	if cmd.Formula != "" {
		fields = append(fields, zap.String("formula", cmd.Formula))
	}
	return fields
}
