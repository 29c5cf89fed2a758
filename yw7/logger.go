package yw7

import (
	"context"
	"log/slog"
)

// Logger is the structured logging interface used throughout yw7tools.
//
// It is small enough to be backed by log/slog, zap or zerolog. Attributes are
// alternating key-value pairs, following the log/slog convention:
//
//	logger.Debug("read scene", "id", 12, "paragraphs", 40)
//
// # Usage with log/slog
//
// Use [NewSlogAdapter] to wrap a *slog.Logger:
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	r := yw7.NewReader()
//	r.Logger = yw7.NewSlogAdapter(slog.New(handler))
//
// # Usage with zap
//
// The yw7tools command wraps a *zap.SugaredLogger; see the ZapAdapter in
// internal/cliutil for a complete adapter.
type Logger interface {
	// Debug logs at debug level. Use for per-entity diagnostics.
	Debug(msg string, attrs ...any)

	// Info logs at info level. Use for per-document progress.
	Info(msg string, attrs ...any)

	// Warn logs at warn level. Use for recoverable problems.
	Warn(msg string, attrs ...any)

	// Error logs at error level.
	Error(msg string, attrs ...any)

	// With returns a Logger with attrs prepended to every entry.
	With(attrs ...any) Logger
}

// NopLogger discards all output. It is the default logger.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

var _ Logger = NopLogger{}

// contextLogger is implemented by loggers that take a context per entry.
type contextLogger interface {
	LogContext(ctx context.Context, level slog.Level, msg string, attrs ...any)
}

// SlogAdapter wraps a *slog.Logger to implement Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter. If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.
func (s *SlogAdapter) Debug(msg string, attrs ...any) {
	s.LogContext(context.Background(), slog.LevelDebug, msg, attrs...)
}

// Info implements Logger.
func (s *SlogAdapter) Info(msg string, attrs ...any) {
	s.LogContext(context.Background(), slog.LevelInfo, msg, attrs...)
}

// Warn implements Logger.
func (s *SlogAdapter) Warn(msg string, attrs ...any) {
	s.LogContext(context.Background(), slog.LevelWarn, msg, attrs...)
}

// Error implements Logger.
func (s *SlogAdapter) Error(msg string, attrs ...any) {
	s.LogContext(context.Background(), slog.LevelError, msg, attrs...)
}

// LogContext logs at level, handing ctx to the slog handler.
func (s *SlogAdapter) LogContext(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	s.logger.Log(ctx, level, msg, attrs...)
}

// With implements Logger.
func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)

// ContextLogger binds a context to a Logger for the span of one request.
// Loggers that take a context per entry, such as SlogAdapter, receive it
// with every call, so context-aware slog handlers can read request values.
type ContextLogger struct {
	logger Logger
	ctx    context.Context
}

// NewContextLogger creates a ContextLogger. A nil logger discards output.
func NewContextLogger(ctx context.Context, logger Logger) *ContextLogger {
	return &ContextLogger{logger: loggerOrNop(logger), ctx: ctx}
}

func (c *ContextLogger) log(level slog.Level, msg string, attrs []any) {
	if cl, ok := c.logger.(contextLogger); ok {
		cl.LogContext(c.ctx, level, msg, attrs...)
		return
	}
	switch level {
	case slog.LevelDebug:
		c.logger.Debug(msg, attrs...)
	case slog.LevelInfo:
		c.logger.Info(msg, attrs...)
	case slog.LevelWarn:
		c.logger.Warn(msg, attrs...)
	default:
		c.logger.Error(msg, attrs...)
	}
}

// Debug implements Logger.
func (c *ContextLogger) Debug(msg string, attrs ...any) { c.log(slog.LevelDebug, msg, attrs) }

// Info implements Logger.
func (c *ContextLogger) Info(msg string, attrs ...any) { c.log(slog.LevelInfo, msg, attrs) }

// Warn implements Logger.
func (c *ContextLogger) Warn(msg string, attrs ...any) { c.log(slog.LevelWarn, msg, attrs) }

// Error implements Logger.
func (c *ContextLogger) Error(msg string, attrs ...any) { c.log(slog.LevelError, msg, attrs) }

// With implements Logger.
func (c *ContextLogger) With(attrs ...any) Logger {
	return &ContextLogger{logger: c.logger.With(attrs...), ctx: c.ctx}
}

// Context returns the context bound to the logger.
func (c *ContextLogger) Context() context.Context {
	return c.ctx
}

var _ Logger = (*ContextLogger)(nil)

func loggerOrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
