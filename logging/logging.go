package logging

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ahp-web/auth"
)

// ZapLogger adapts a zap logger to auth.Logger. Arguments after the
// message are loosely typed key/value pairs.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

var _ auth.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a production JSON logger, or a console logger when
// dev is set.
func NewZapLogger(level string, dev bool) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse log level").
			WithMetadata(map[string]any{"level": level})
	}

	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "build logger")
	}
	return FromZap(logger), nil
}

func FromZap(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{base: logger, sugar: logger.Sugar()}
}

// Named returns a child logger, e.g. Named("mailer").
func (l *ZapLogger) Named(name string) *ZapLogger {
	return FromZap(l.base.Named(name))
}

// Zap exposes the underlying logger for middleware.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.base
}

func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}
