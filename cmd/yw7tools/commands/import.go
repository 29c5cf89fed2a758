package commands

import (
	"fmt"
	"time"

	"github.com/erraggy/yw7tools"
	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/host/memhost"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [flags] <file.yw7|->",
		Short: "Import a yw7 project into a host project snapshot",
		Long: `Import a yWriter 7 project into a novx host project and write the host
snapshot. The snapshot format follows the output extension (.yaml, .yml,
.toml or .json); without -o the snapshot is written to stdout in --format.`,
		Example: `  yw7tools import novel.yw7 -o novel.yaml
  yw7tools import --sequential-ids novel.yw7 -o novel.toml
  cat novel.yw7 | yw7tools import -q --format json - > novel.json`,
		Args: cobra.ExactArgs(1),
		RunE: a.runImport,
	}
	addConversionFlags(cmd)
	f := cmd.Flags()
	f.StringP("output", "o", "", "snapshot file to write (default: stdout)")
	f.String("format", string(memhost.FormatYAML), "stdout snapshot format: yaml, toml or json")
	f.Bool("sequential-ids", false, "allocate readable host IDs (ch1, sc1, ...) instead of UUIDs")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	input := args[0]
	output, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")

	format := memhost.Format(formatName)
	if output != "" {
		f, err := memhost.FormatForPath(output)
		if err != nil {
			return err
		}
		if err := ValidateOutputPath(output, input); err != nil {
			return err
		}
		format = f
	}

	h := memhost.New()
	start := time.Now()
	result, err := a.importInto(input, h)
	if err != nil && !converter.IsStrictFailure(err) {
		return fmt.Errorf("importing %s: %w", FormatInputPath(input), err)
	}

	w := a.diag(cmd)
	writef(w, "yWriter 7 Import\n")
	writef(w, "================\n\n")
	writef(w, "yw7tools version: %s\n", yw7tools.Version())
	writef(w, "Project: %s\n", FormatInputPath(input))
	writef(w, "Encoding: %s (%s)\n", result.Encoding, result.EncodingSource)
	writef(w, "Repairs: %d\n", result.Repairs)
	OutputProjectStats(w, result.Project)
	writef(w, "Host Entities: %d\n", h.Len())
	writef(w, "Total Time: %v\n\n", time.Since(start))
	OutputIssues(w, "Import", &result.Report)

	if err != nil {
		return err
	}

	if output != "" {
		if err := h.Save(output); err != nil {
			return err
		}
		writef(w, "\nOutput written to: %s\n", output)
		return nil
	}
	data, err := h.Marshal(format)
	if err != nil {
		return err
	}
	if _, err := a.stdout.Write(data); err != nil {
		return fmt.Errorf("writing snapshot to stdout: %w", err)
	}
	return nil
}

// importInto imports the yw7 document at path, or stdin, into h.
func (a *app) importInto(path string, h *memhost.Project) (*converter.ImportResult, error) {
	opts := append(a.options(), converter.WithHost(h))
	if path == StdinFilePath {
		opts = append(opts, converter.WithReader(a.stdin), converter.WithSourceName("<stdin>"))
	} else {
		opts = append(opts, converter.WithFilePath(path))
	}
	return converter.ImportWithOptions(opts...)
}
