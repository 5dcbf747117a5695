// Package logger exposes a global, Sugared Zap logger for the whole process.
// Logs are emitted as JSON on stdout; when an OpenTelemetry LoggerProvider has
// been registered through the telemetry package, an OTEL bridge core forwards
// every record to the configured backend as well.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/gabapcia/chainkeeper/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// logger is the process-wide SugaredLogger. It starts as a nop so
	// logging before Init (or from tests) is silent instead of a panic.
	logger = zap.NewNop().Sugar()

	// initOnce guards the one-time setup performed by Init.
	initOnce sync.Once
)

// config holds the options applied before initialization.
type config struct {
	level string // minimum level: debug, info, warn, error, panic, fatal
}

// Option customizes the logger before Init builds it.
type Option func(*config)

// WithLevel sets the minimum level the global logger emits at.
func WithLevel(l string) Option {
	return func(c *config) {
		c.level = l
	}
}

// Init builds the global logger. The default is JSON to stdout at "info";
// WithLevel overrides the threshold. Repeated calls after the first successful
// one are no-ops. Init returns an error only when the level cannot be parsed.
func Init(opts ...Option) error {
	cfg := config{level: "info"}
	for _, opt := range opts {
		opt(&cfg)
	}

	level, err := zapcore.ParseLevel(cfg.level)
	if err != nil {
		return err
	}

	initOnce.Do(func() {
		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				level,
			),
		}

		if lp := telemetry.LoggerProvider(); lp != nil {
			cores = append(cores, otelzap.NewCore("", otelzap.WithLoggerProvider(lp)))
		}

		logger = zap.New(zapcore.NewTee(cores...)).Sugar()
	})

	return nil
}

// Sync flushes buffered entries. Call it on shutdown.
func Sync() error {
	return logger.Sync()
}

// Debug logs a debug-level message with optional key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Debugw(msg, keysAndValues...)
}

// Info logs an info-level message with optional key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Infow(msg, keysAndValues...)
}

// Warn logs a warn-level message with optional key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Warnw(msg, keysAndValues...)
}

// Error logs an error-level message with optional key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Errorw(msg, keysAndValues...)
}

// Panic logs a panic-level message (and then panics) with optional key/value context.
func Panic(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Panicw(msg, keysAndValues...)
}

// Fatal logs a fatal-level message (and then exits) with optional key/value context.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	logger.Fatalw(msg, keysAndValues...)
}
