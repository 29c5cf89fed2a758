package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/internal/cliutil"
	"github.com/erraggy/yw7tools/internal/config"
	"github.com/erraggy/yw7tools/mapper"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// flagKeys binds command line flags to configuration keys. A flag set on
// the command line overrides the environment and the config file.
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"log-format":     "log.format",
	"strict":         "strict",
	"include-info":   "include_info",
	"indent":         "indent",
	"backup":         "backup",
	"lock-check":     "lock_check",
	"sequential-ids": "sequential_ids",
	"fallback":       "encoding.fallbacks",
	"debounce":       "watch.debounce",
	"metrics-addr":   "watch.metrics_addr",
}

// app is the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg     config.Config
	log     *zap.Logger
	metrics *converter.Metrics
}

// Execute runs the root command.
func Execute() {
	root := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		writef(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree reading from stdin and writing
// documents to stdout and diagnostics to stderr.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "yw7tools",
		Short: "Convert yWriter 7 projects to and from novx host projects",
		Long: `yw7tools converts yWriter 7 (.yw7) projects to and from novx host project
snapshots, repairs damaged yw7 documents, and serves the conversions over MCP.

Configuration is read from .yw7tools.yaml (or .toml) in the working or home
directory, from YW7TOOLS_* environment variables, and from a .env file.
Command line flags take precedence.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .yw7tools.yaml)")
	pf.String("env-file", "", "dotenv file to load (default .env)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "console", "log format: console or json")
	pf.BoolP("quiet", "q", false, "quiet mode: no diagnostic messages")

	root.AddCommand(
		newImportCmd(a),
		newExportCmd(a),
		newCheckCmd(a),
		newRepairCmd(a),
		newWatchCmd(a),
		newMCPCmd(a),
		newVersionCmd(a),
	)
	return root
}

// addConversionFlags registers the flags shared by converting commands.
func addConversionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("strict", false, "fail on any conversion issue (even warnings)")
	f.Bool("include-info", true, "report informational messages")
	f.StringSlice("fallback", nil, "fallback encodings tried when the declared one fails (default utf-16,windows-1252)")
	f.Bool("lock-check", true, "refuse projects yWriter holds open")
}

// setup loads the .env file and the configuration, then builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	var err error
	if envFile != "" {
		err = config.LoadDotEnv(envFile)
	} else {
		err = config.LoadDotEnv()
	}
	if err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	v, err := config.New(cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	a.cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	a.log, err = cliutil.NewLogger(a.stderr, a.cfg.Log.Level, a.cfg.Log.Format)
	return err
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// quiet reports whether diagnostic output is suppressed.
func (a *app) quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Flags().GetBool("quiet")
	return q
}

// diag returns the diagnostics writer, discarding output in quiet mode.
func (a *app) diag(cmd *cobra.Command) io.Writer {
	if a.quiet(cmd) {
		return io.Discard
	}
	return a.stderr
}

// options returns the converter options the configuration selects.
func (a *app) options() []converter.Option {
	opts := []converter.Option{
		converter.WithLogger(cliutil.NewZapAdapter(a.log)),
		converter.WithStrictMode(a.cfg.Strict),
		converter.WithIncludeInfo(a.cfg.IncludeInfo),
		converter.WithFallbackEncodings(a.cfg.Encoding.Fallbacks...),
		converter.WithIndent(a.cfg.Indent),
		converter.WithBackup(a.cfg.Backup),
		converter.WithLockCheck(a.cfg.LockCheck),
	}
	if a.cfg.SequentialIDs {
		opts = append(opts, converter.WithIDFunc(mapper.SequentialIDs()))
	}
	if a.metrics != nil {
		opts = append(opts, converter.WithMetrics(a.metrics))
	}
	return opts
}
