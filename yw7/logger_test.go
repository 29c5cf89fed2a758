package yw7

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/erraggy/yw7tools/internal/testutil"
)

type contextKey string

func newBufferLogger(buf *bytes.Buffer, level slog.Level) *SlogAdapter {
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
	return NewSlogAdapter(slog.New(handler))
}

func TestNopLogger(t *testing.T) {
	l := NopLogger{}
	l.Debug("test message", "key", "value")
	l.Info("test message", "key", "value")
	l.Warn("test message", "key", "value")
	l.Error("test message", "key", "value")
	if _, ok := l.With("key", "value").(NopLogger); !ok {
		t.Error("With should return NopLogger")
	}
	if _, ok := loggerOrNop(nil).(NopLogger); !ok {
		t.Error("loggerOrNop(nil) should return NopLogger")
	}
}

func TestSlogAdapter(t *testing.T) {
	t.Run("NewSlogAdapter with nil uses default", func(t *testing.T) {
		adapter := NewSlogAdapter(nil)
		if adapter.logger == nil {
			t.Error("adapter.logger should not be nil")
		}
	})

	levels := []struct {
		name  string
		log   func(Logger)
		level string
	}{
		{"debug", func(l Logger) { l.Debug("msg", "k", "v") }, "DEBUG"},
		{"info", func(l Logger) { l.Info("msg", "k", "v") }, "INFO"},
		{"warn", func(l Logger) { l.Warn("msg", "k", "v") }, "WARN"},
		{"error", func(l Logger) { l.Error("msg", "k", "v") }, "ERROR"},
	}
	for _, tt := range levels {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newBufferLogger(&buf, slog.LevelDebug))
			output := buf.String()
			if !strings.Contains(output, tt.level) {
				t.Errorf("expected %s level, got: %s", tt.level, output)
			}
			if !strings.Contains(output, "k=v") {
				t.Errorf("expected k=v attribute, got: %s", output)
			}
		})
	}

	t.Run("With adds attributes", func(t *testing.T) {
		var buf bytes.Buffer
		l := newBufferLogger(&buf, slog.LevelDebug).With("component", "reader")
		l.Debug("test with", "extra", "data")
		output := buf.String()
		if !strings.Contains(output, "component=reader") || !strings.Contains(output, "extra=data") {
			t.Errorf("expected both attributes, got: %s", output)
		}
	})
}

func TestContextLogger(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKey("session"), "abc")

	t.Run("stores context", func(t *testing.T) {
		l := NewContextLogger(ctx, nil)
		if l.Context() != ctx {
			t.Error("Context() should return the stored context")
		}
		l.Info("discarded")
	})

	t.Run("delegates and keeps context through With", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewContextLogger(ctx, newBufferLogger(&buf, slog.LevelDebug))
		with, ok := l.With("doc", "a.yw7").(*ContextLogger)
		if !ok {
			t.Fatal("With should return *ContextLogger")
		}
		if with.Context() != ctx {
			t.Error("With should keep the context")
		}
		with.Warn("via context")
		if !strings.Contains(buf.String(), "via context") || !strings.Contains(buf.String(), "doc=a.yw7") {
			t.Errorf("expected message and attribute, got: %s", buf.String())
		}
	})
}

// sessionHandler copies the session stored in the entry's context into the record.
type sessionHandler struct{ slog.Handler }

func (h sessionHandler) Handle(ctx context.Context, r slog.Record) error {
	if v, ok := ctx.Value(contextKey("session")).(string); ok {
		r.AddAttrs(slog.String("session", v))
	}
	return h.Handler.Handle(ctx, r)
}

func (h sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return sessionHandler{h.Handler.WithAttrs(attrs)}
}

// levelRecorder is a Logger without context support.
type levelRecorder struct{ levels *[]string }

func (l levelRecorder) Debug(string, ...any) { *l.levels = append(*l.levels, "debug") }
func (l levelRecorder) Info(string, ...any)  { *l.levels = append(*l.levels, "info") }
func (l levelRecorder) Warn(string, ...any)  { *l.levels = append(*l.levels, "warn") }
func (l levelRecorder) Error(string, ...any) { *l.levels = append(*l.levels, "error") }
func (l levelRecorder) With(...any) Logger   { return l }

func TestContextLoggerPassesContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextKey("session"), "abc")

	t.Run("context-aware handler sees the context", func(t *testing.T) {
		var buf bytes.Buffer
		handler := sessionHandler{slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})}
		l := NewContextLogger(ctx, NewSlogAdapter(slog.New(handler))).With("doc", "a.yw7")
		l.Debug("read scene")
		output := buf.String()
		if !strings.Contains(output, "session=abc") || !strings.Contains(output, "doc=a.yw7") {
			t.Errorf("expected session and doc attributes, got: %s", output)
		}
	})

	t.Run("plain logger keeps levels", func(t *testing.T) {
		var levels []string
		l := NewContextLogger(ctx, levelRecorder{levels: &levels})
		l.Debug("a")
		l.Info("b")
		l.Warn("c")
		l.Error("d")
		want := []string{"debug", "info", "warn", "error"}
		if strings.Join(levels, ",") != strings.Join(want, ",") {
			t.Errorf("levels = %v, want %v", levels, want)
		}
	})
}

func TestReaderLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewReader()
	r.Logger = newBufferLogger(&buf, slog.LevelInfo)
	r.Path = "sample.yw7"

	w := NewWriter()
	res, err := w.Write(testutil.NewSimpleProject())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := r.Read(string(res.Data)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(buf.String(), "read yw7 project") || !strings.Contains(buf.String(), "scenes=1") {
		t.Errorf("expected read summary, got: %s", buf.String())
	}
}
