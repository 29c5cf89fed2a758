package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration

	// Listing defaults of yw7_inspect.
	ListLimit int
	MaxLimit  int

	// MaxInlineSize caps inline document content, in bytes.
	MaxInlineSize int64

	// Conversion defaults.
	Strict bool
	NoInfo bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from YW7TOOLS_MCP_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       envBool("YW7TOOLS_MCP_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("YW7TOOLS_MCP_CACHE_MAX_SIZE", 10),
		CacheTTL:           envDuration("YW7TOOLS_MCP_CACHE_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("YW7TOOLS_MCP_CACHE_SWEEP_INTERVAL", 60*time.Second),
		ListLimit:          envInt("YW7TOOLS_MCP_LIST_LIMIT", 100),
		MaxLimit:           envInt("YW7TOOLS_MCP_MAX_LIMIT", 1000),
		MaxInlineSize:      int64(envInt("YW7TOOLS_MCP_MAX_INLINE_SIZE", 10*1024*1024)),
		Strict:             envBool("YW7TOOLS_MCP_STRICT", false),
		NoInfo:             envBool("YW7TOOLS_MCP_NO_INFO", false),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
