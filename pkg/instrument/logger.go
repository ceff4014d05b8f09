package instrument

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/signals/pkg/reactive"
)

// Logger is an Observer that writes slog records: debug records for
// writes, computations and teardown, error records for raised errors.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates the observer. A nil logger uses slog.Default().
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func infoAttr(info reactive.Info) slog.Attr {
	return slog.Group("signal",
		slog.Uint64("id", info.ID),
		slog.String("name", info.Name),
		slog.String("kind", string(info.Kind)),
	)
}

func (l *Logger) SignalWritten(info reactive.Info) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "signal written", infoAttr(info))
}

func (l *Logger) SignalNotified(info reactive.Info, subscribers int) {
	if subscribers == 0 {
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "subscribers notified",
		infoAttr(info), slog.Int("subscribers", subscribers))
}

func (l *Logger) MemoComputed(info reactive.Info, took time.Duration) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "memo computed",
		infoAttr(info), slog.Duration("took", took))
}

func (l *Logger) ScopeDisposed(id uint64) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "scope disposed", slog.Uint64("scope", id))
}

func (l *Logger) ErrorRaised(err error) {
	l.logger.LogAttrs(context.Background(), slog.LevelError, "reactive error",
		slog.String("code", errorCode(err)), slog.Any("error", err))
}

var _ reactive.Observer = (*Logger)(nil)
