// Package logger wraps zap behind package-level helpers so call sites stay
// one-line.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

// Init builds the process logger. level is one of debug/info/warn/error;
// anything unrecognized falls back to info.
func Init(level string) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	sugar = l.Sugar()
}

// Sync flushes buffered entries; call it on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

func get() *zap.SugaredLogger {
	if sugar == nil {
		// Tests and early startup paths log before Init runs.
		Init("info")
	}
	return sugar
}

func Debugf(format string, args ...any) { get().Debugf(format, args...) }
func Info(args ...any)                  { get().Info(args...) }
func Infof(format string, args ...any)  { get().Infof(format, args...) }
func Warnf(format string, args ...any)  { get().Warnf(format, args...) }
func Errorf(format string, args ...any) { get().Errorf(format, args...) }
func Fatalf(format string, args ...any) { get().Fatalf(format, args...) }
