package commands

import (
	"bytes"
	"fmt"
	"time"

	"github.com/erraggy/yw7tools"
	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/host/memhost"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [flags] <snapshot|->",
		Short: "Export a host project snapshot to a yw7 project",
		Long: `Export a novx host project snapshot to a yWriter 7 project. The snapshot
format follows its extension; snapshots read from stdin use --format.
An existing output file is kept as <output>.bak unless --backup=false.`,
		Example: `  yw7tools export novel.yaml -o novel.yw7
  yw7tools export --strict novel.toml -o novel.yw7
  cat novel.json | yw7tools export --format json - > novel.yw7`,
		Args: cobra.ExactArgs(1),
		RunE: a.runExport,
	}
	addConversionFlags(cmd)
	f := cmd.Flags()
	f.StringP("output", "o", "", "yw7 file to write (default: stdout)")
	f.String("format", string(memhost.FormatYAML), "stdin snapshot format: yaml, toml or json")
	f.String("indent", "\t", "indentation unit of the written XML")
	f.Bool("backup", true, "keep the replaced file as <output>.bak")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	input := args[0]
	output, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")

	h, err := a.loadSnapshot(input, memhost.Format(formatName))
	if err != nil {
		return err
	}
	if output != "" {
		if err := ValidateOutputPath(output, input); err != nil {
			return err
		}
	}

	opts := append(a.options(), converter.WithHost(h))
	var buf bytes.Buffer
	if output != "" {
		opts = append(opts, converter.WithOutputPath(output))
	} else {
		opts = append(opts, converter.WithWriter(&buf))
	}

	start := time.Now()
	result, err := converter.ExportWithOptions(opts...)
	if err != nil && !converter.IsStrictFailure(err) {
		return fmt.Errorf("exporting %s: %w", FormatInputPath(input), err)
	}

	w := a.diag(cmd)
	writef(w, "yWriter 7 Export\n")
	writef(w, "================\n\n")
	writef(w, "yw7tools version: %s\n", yw7tools.Version())
	writef(w, "Snapshot: %s\n", FormatInputPath(input))
	writef(w, "Host Entities: %d\n", h.Len())
	OutputProjectStats(w, result.Project)
	writef(w, "Document Size: %d bytes\n", len(result.Data))
	writef(w, "Total Time: %v\n\n", time.Since(start))
	OutputIssues(w, "Export", &result.Report)

	if err != nil {
		return err
	}
	if output != "" {
		writef(w, "\nOutput written to: %s\n", output)
		return nil
	}
	if _, err := a.stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing document to stdout: %w", err)
	}
	return nil
}

// loadSnapshot reads a host snapshot from path, or from stdin in format.
func (a *app) loadSnapshot(path string, format memhost.Format) (*memhost.Project, error) {
	if path != StdinFilePath {
		return memhost.Load(path)
	}
	data, err := readInput(path, a.stdin)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot from stdin: %w", err)
	}
	return memhost.Unmarshal(data, format)
}
