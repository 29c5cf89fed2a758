// Package cliutil builds the loggers of the yw7tools command.
package cliutil

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/erraggy/yw7tools/yw7"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAdapter wraps a *zap.SugaredLogger to implement yw7.Logger.
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

var _ yw7.Logger = (*ZapAdapter)(nil)

// NewZapAdapter creates a yw7.Logger backed by l.
func NewZapAdapter(l *zap.Logger) *ZapAdapter {
	return &ZapAdapter{logger: l.Sugar()}
}

// Debug implements yw7.Logger.
func (z *ZapAdapter) Debug(msg string, attrs ...any) { z.logger.Debugw(msg, attrs...) }

// Info implements yw7.Logger.
func (z *ZapAdapter) Info(msg string, attrs ...any) { z.logger.Infow(msg, attrs...) }

// Warn implements yw7.Logger.
func (z *ZapAdapter) Warn(msg string, attrs ...any) { z.logger.Warnw(msg, attrs...) }

// Error implements yw7.Logger.
func (z *ZapAdapter) Error(msg string, attrs ...any) { z.logger.Errorw(msg, attrs...) }

// With implements yw7.Logger.
func (z *ZapAdapter) With(attrs ...any) yw7.Logger {
	return &ZapAdapter{logger: z.logger.With(attrs...)}
}

// Sync flushes buffered entries.
func (z *ZapAdapter) Sync() error {
	return z.logger.Sync()
}

// NewLogger builds a zap logger writing to w. level is one of debug, info,
// warn or error; format is console or json.
func NewLogger(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("cliutil: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	var enc zapcore.Encoder
	switch format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("cliutil: unknown log format %q", format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// NewSlogLogger builds the slog logger the mcp command hands to the MCP
// server. Level and format take the same values as in NewLogger.
func NewSlogLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("cliutil: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: dropTime}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "console":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("cliutil: unknown log format %q", format)
	}
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
