package cliutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapAdapter(t *testing.T) {
	var buf bytes.Buffer
	zl, err := NewLogger(&buf, "info", "json")
	require.NoError(t, err)
	log := NewZapAdapter(zl).With("path", "novel.yw7")

	log.Debug("hidden")
	log.Info("read yw7 project", "scenes", 3)
	log.Warn("encoding fallback")
	log.Error("failed")
	require.NoError(t, zl.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "debug is below the level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "read yw7 project", entry["msg"])
	assert.Equal(t, "novel.yw7", entry["path"])
	assert.Equal(t, float64(3), entry["scenes"])
	assert.NotContains(t, entry, "ts")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	zl, err := NewLogger(&buf, "debug", "console")
	require.NoError(t, err)
	zl.Debug("hello")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "hello")

	_, err = NewLogger(&buf, "loud", "console")
	assert.Error(t, err)
	_, err = NewLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewSlogLogger(&buf, "warn", "json")
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("repaired document", "repairs", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "repaired document", entry["msg"])
	assert.Equal(t, float64(2), entry["repairs"])
	assert.NotContains(t, entry, "time")

	buf.Reset()
	l, err = NewSlogLogger(&buf, "debug", "console")
	require.NoError(t, err)
	l.Debug("hello")
	assert.Contains(t, buf.String(), "level=DEBUG msg=hello")

	_, err = NewSlogLogger(&buf, "loud", "console")
	assert.Error(t, err)
	_, err = NewSlogLogger(&buf, "info", "xml")
	assert.Error(t, err)
}
