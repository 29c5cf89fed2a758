// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes yw7tools conversions as MCP tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/erraggy/yw7tools"
	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/yw7"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `yw7tools MCP server: inspects, repairs, imports and exports yWriter 7 (.yw7) projects.

Import converts a .yw7 document into a host project snapshot (YAML, TOML or JSON). Export converts a snapshot back into a .yw7 document.

Configuration: All defaults are configurable via YW7TOOLS_MCP_* environment variables set in your MCP client config.

Key settings:
- YW7TOOLS_MCP_STRICT (default: false): fail conversions on any warning
- YW7TOOLS_MCP_NO_INFO (default: false): drop informational issues
- YW7TOOLS_MCP_LIST_LIMIT (default: 100): default entity limit of yw7_inspect
- YW7TOOLS_MCP_CACHE_TTL (default: 15m): cache TTL for inspected documents
- YW7TOOLS_MCP_CACHE_ENABLED (default: true): disable caching entirely

Caching: Inspected documents are cached per session. File entries use path+mtime as key (auto-invalidated on change).`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled. base configures every conversion the tools run;
// their log entries go to log, or slog.Default() when log is nil.
func Run(ctx context.Context, log *slog.Logger, base ...converter.Option) error {
	if cfg.CacheEnabled {
		importCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "yw7tools", Version: yw7tools.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server, &toolset{base: base, log: log})
	return server.Run(ctx, &mcp.StdioTransport{})
}

// toolset carries the conversion options shared by all tool handlers.
type toolset struct {
	base []converter.Option
	log  *slog.Logger
}

// logger returns the logger of one call of tool, bound to the request context.
func (ts *toolset) logger(ctx context.Context, tool string) *yw7.ContextLogger {
	return yw7.NewContextLogger(ctx, yw7.NewSlogAdapter(ts.log).With("tool", tool))
}

// options returns the base options, the call's logger, then extra.
func (ts *toolset) options(ctx context.Context, tool string, extra ...converter.Option) []converter.Option {
	opts := make([]converter.Option, 0, len(ts.base)+len(extra)+1)
	opts = append(opts, ts.base...)
	opts = append(opts, converter.WithLogger(ts.logger(ctx, tool)))
	return append(opts, extra...)
}

func registerAllTools(server *mcp.Server, ts *toolset) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "yw7_inspect",
		Description: "Read a yWriter 7 (.yw7) project and summarize it: title, author, encoding, repairs, entity counts and reader issues. Set section (chapters, scenes, characters, locations, items, plot_lines, project_notes) to list that section's entities; use offset/limit to paginate. Default limit is configurable via YW7TOOLS_MCP_LIST_LIMIT.",
	}, ts.handleInspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "yw7_import",
		Description: "Import a yWriter 7 (.yw7) project into a host project and return the host snapshot (yaml, toml or json). Use output to write the snapshot to a file (format follows the extension) instead of returning it inline. strict=true fails on any warning. sequential_ids=true allocates readable host IDs (ch1, sc1, ...) instead of UUIDs.",
	}, ts.handleImport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "yw7_export",
		Description: "Export a host project snapshot to a yWriter 7 (.yw7) document. Use output to write the document to a file (an existing file is kept as .bak) instead of returning it inline. strict=true fails on any warning without writing anything.",
	}, ts.handleExport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "yw7_repair",
		Description: "Decode a .yw7 document and repair its XML structure (overlapping formatting tags, stray end tags, unescaped characters) without reading the project. Returns the repairs and, unless output is set, the repaired document.",
	}, ts.handleRepair)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ListLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ListLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// issueOutput is the wire form of a conversion issue.
type issueOutput struct {
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Path     string `json:"path,omitempty"`
	Entity   string `json:"entity,omitempty"`
	Message  string `json:"message"`
}

func issueOutputs(list []converter.Issue) []issueOutput {
	out := makeSlice[issueOutput](len(list))
	for _, issue := range list {
		out = append(out, issueOutput{
			Severity: issue.Severity.String(),
			Kind:     string(issue.Kind),
			Path:     issue.Path,
			Entity:   issue.Entity,
			Message:  issue.Message,
		})
	}
	return out
}
