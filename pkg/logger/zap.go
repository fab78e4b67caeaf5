// Package logger provides the shared zap logger for the template. Call
// Get() anywhere; the first call initializes the logger from the
// environment (LOG_LEVEL, APP_ENV).
package logger

import (
	"context"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFilePath = "logs/app.log"

type ctxKey struct{}

var (
	once   sync.Once
	logger *zap.Logger
)

// Get returns the singleton logger, initializing it on first use.
// It logs to the console and, when the log directory is writable,
// to a JSON file tagged with build metadata.
func Get() *zap.Logger {
	once.Do(func() {
		level := zap.InfoLevel
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			if parsed, err := zapcore.ParseLevel(env); err == nil {
				level = parsed
			}
		}

		consoleCfg := zap.NewProductionEncoderConfig()
		if os.Getenv("APP_ENV") == "development" {
			consoleCfg = zap.NewDevelopmentEncoderConfig()
			consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(consoleCfg),
				zapcore.AddSync(os.Stdout),
				level,
			),
		}

		if file := openLogFile(); file != nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(file),
				level,
			).With([]zapcore.Field{
				zap.String("git_revision", gitRevision()),
				zap.String("go_version", goVersion()),
			})
			cores = append(cores, fileCore)
		}

		logger = zap.New(zapcore.NewTee(cores...))
	})
	return logger
}

func openLogFile() *os.File {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return nil
	}
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil
	}
	return file
}

func gitRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return "unknown"
}

func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// WithCtx stores the logger in the context. If the same logger is already
// present the original context is returned unchanged.
func WithCtx(ctx context.Context, l *zap.Logger) context.Context {
	if existing, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && existing == l {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromCtx returns the logger stored in the context, falling back to the
// singleton from Get().
func FromCtx(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return Get()
}

// ResetForTest clears the singleton so tests can re-run initialization
// with different environment variables.
func ResetForTest() {
	once = sync.Once{}
	logger = nil
}
