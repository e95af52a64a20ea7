// Package logger wraps go-belt logging for the avtimestamp project: the
// logger travels inside the context, and the helpers below log through it.
package logger

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
)

type (
	Logger = logger.Logger
	Level  = logger.Level
)

const (
	LevelUndefined = logger.LevelUndefined
	LevelFatal     = logger.LevelFatal
	LevelPanic     = logger.LevelPanic
	LevelError     = logger.LevelError
	LevelWarning   = logger.LevelWarning
	LevelInfo      = logger.LevelInfo
	LevelDebug     = logger.LevelDebug
	LevelTrace     = logger.LevelTrace
)

// New returns a logrus-backed logger with the given level.
func New(level Level) Logger {
	return logrus.Default().WithLevel(level)
}

// Install makes l the default logger and returns ctx carrying it.
func Install(ctx context.Context, l Logger) context.Context {
	logger.Default = func() Logger {
		return l
	}
	return logger.CtxWithLogger(ctx, l)
}

func FromCtx(ctx context.Context) Logger {
	return logger.FromCtx(ctx)
}

// Logf is just a shorthand for FromCtx(ctx).Logf(level, ...)
func Logf(ctx context.Context, level Level, format string, args ...any) {
	logger.Logf(ctx, level, format, args...)
}

// Panic logs and panics.
func Panic(ctx context.Context, values ...any) {
	logger.Panic(ctx, values...)
}

func Debugf(ctx context.Context, format string, args ...any) {
	logger.Debugf(ctx, format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	logger.Warnf(ctx, format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	logger.Errorf(ctx, format, args...)
}

// Fatalf logs and calls os.Exit.
func Fatalf(ctx context.Context, format string, args ...any) {
	logger.Fatalf(ctx, format, args...)
}
