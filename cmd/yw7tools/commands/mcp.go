package commands

import (
	"github.com/erraggy/yw7tools/internal/cliutil"
	"github.com/erraggy/yw7tools/internal/mcpserver"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the conversions as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
yw7_inspect, yw7_import, yw7_export and yw7_repair tools. Logs go to stderr
through log/slog, one "tool" attribute per call, at --log-level and in
--log-format. Tool defaults are read from YW7TOOLS_MCP_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := cliutil.NewSlogLogger(a.stderr, a.cfg.Log.Level, a.cfg.Log.Format)
			if err != nil {
				return err
			}
			return mcpserver.Run(cmd.Context(), log, a.options()...)
		},
	}
}
