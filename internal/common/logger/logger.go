package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"github.com/alikamatu/medi-rides-sub003/internal/common/telemetry"
)

// Log is the global slog logger instance shared by every package.
var Log *slog.Logger

// Init initializes the global logger. Must be called after
// telemetry.InitTracer so the OTLP log handler picks up the
// LoggerProvider when one is configured.
func Init(service string, isDevelopment bool) {
	var handlers []slog.Handler

	// stdout handler is always present so container logs stay readable
	stdoutOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if isDevelopment {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, stdoutOpts))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(os.Stdout, stdoutOpts))
	}

	if telemetry.HasLoggerProvider() {
		handlers = append(handlers, otelslog.NewHandler(service,
			otelslog.WithLoggerProvider(global.GetLoggerProvider())))
	}

	Log = slog.New(&multiHandler{handlers: handlers}).With("service", service)
}

// InitDefault initializes with development settings.
func InitDefault(service string) {
	Init(service, true)
}

// WithContext returns the logger enriched with trace IDs when the
// context carries a recording span.
func WithContext(ctx context.Context) *slog.Logger {
	if Log == nil {
		return slog.Default()
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return Log
	}

	spanCtx := span.SpanContext()
	return Log.With(
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	)
}

func Info(msg string, args ...any) {
	if Log != nil {
		Log.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if Log != nil {
		Log.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if Log != nil {
		Log.Error(msg, args...)
	}
}

func Debug(msg string, args ...any) {
	if Log != nil {
		Log.Debug(msg, args...)
	}
}

// Fatal logs at error level and exits.
func Fatal(msg string, args ...any) {
	if Log != nil {
		Log.Error(msg, args...)
	}
	os.Exit(1)
}

func InfoCtx(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).InfoContext(ctx, msg, args...)
}

func WarnCtx(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).WarnContext(ctx, msg, args...)
}

func ErrorCtx(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).ErrorContext(ctx, msg, args...)
}

// Infof logs a formatted info message. Prefer the structured variants.
func Infof(template string, args ...interface{}) {
	if Log != nil {
		Log.Info(fmt.Sprintf(template, args...))
	}
}

// Errorf logs a formatted error message.
func Errorf(template string, args ...interface{}) {
	if Log != nil {
		Log.Error(fmt.Sprintf(template, args...))
	}
}

// multiHandler fans a record out to every configured handler.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				// keep delivering to the remaining handlers
				continue
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
