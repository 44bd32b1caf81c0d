package observability

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/wastehunter/internal/game/action"
)

// LogNotifier delivers user notifications as log entries, at the level
// matching the notification.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier returns a notifier writing to logger.
//
// Precondition: logger must be non-nil.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

// Notify logs n for entityID.
func (l *LogNotifier) Notify(_ context.Context, entityID string, n action.Notification) {
	fields := []zap.Field{zap.String("entity", entityID)}
	if n.Warning != nil {
		fields = append(fields,
			zap.String("warning", string(n.Warning.Kind)),
			zap.String("resource", n.Warning.Resource),
			zap.Int("remaining", n.Warning.Remaining),
		)
	}
	if ce := l.logger.Check(levelOf(n.Level), n.Message); ce != nil {
		ce.Write(fields...)
	}
}

func levelOf(l action.Level) zapcore.Level {
	switch l {
	case action.LevelWarn:
		return zapcore.WarnLevel
	case action.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
