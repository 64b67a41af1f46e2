// Package logger holds the process-wide structured logger.
package logger

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by every log line.
const (
	RequestIDKey = "request_id"
	ModeKey      = "mode"
	ErrorKey     = "error"
)

type ctxKey struct{}

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Initialize builds the logger. Production uses sampled JSON at info level,
// development a console encoder at debug level. Output goes to stdout unless
// other paths are given.
func Initialize(production bool, outputs ...string) error {
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	if production {
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	config := zap.Config{
		Level:            level,
		Development:      !production,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	if production {
		config.Encoding = "json"
		config.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	l, err := config.Build()
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		return err
	}
	Set(l)
	return nil
}

// Set replaces the process logger. Tests use it with zaptest/observer cores.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// L returns the process logger. It is a no-op logger until Initialize runs.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Close flushes buffered entries.
func Close() {
	_ = L().Sync()
}

// WithRequestID stores id in ctx for Ctx to pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Ctx returns the process logger annotated with the request id in ctx.
func Ctx(ctx context.Context) *zap.Logger {
	l := L()
	if id := RequestID(ctx); id != "" {
		return l.With(zap.String(RequestIDKey, id))
	}
	return l
}
