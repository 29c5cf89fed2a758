package commands

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/host/memhost"
	"github.com/erraggy/yw7tools/mapper"
	"github.com/spf13/cobra"
)

// errRoundTrip reports a project that does not survive a round trip.
var errRoundTrip = errors.New("round trip is not stable")

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file.yw7|->",
		Short: "Check that a yw7 project survives a round trip",
		Long: `Import a yWriter 7 project into an in-memory host, export it, and repeat.
The check passes when the second pass reproduces the first one: the same
host entities and a byte-identical yw7 document. Nothing is written.`,
		Example: `  yw7tools check novel.yw7
  yw7tools check --strict novel.yw7`,
		Args: cobra.ExactArgs(1),
		RunE: a.runCheck,
	}
	addConversionFlags(cmd)
	return cmd
}

// roundTrip is one import-export pass.
type roundTrip struct {
	host   *memhost.Project
	data   []byte
	report converter.Report
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	input := args[0]
	data, err := readInput(input, a.stdin)
	if err != nil {
		return fmt.Errorf("reading %s: %w", FormatInputPath(input), err)
	}

	w := a.diag(cmd)
	writef(w, "yWriter 7 Round Trip Check\n")
	writef(w, "==========================\n\n")
	writef(w, "Project: %s\n\n", FormatInputPath(input))

	first, err := a.pass(data, FormatInputPath(input))
	if err != nil {
		return err
	}
	OutputIssues(w, "First pass", &first.report)

	second, err := a.pass(first.data, "<first pass>")
	if err != nil {
		return err
	}

	if first.host.Len() != second.host.Len() {
		writef(w, "✗ Host entities changed: %d then %d\n", first.host.Len(), second.host.Len())
		return errRoundTrip
	}
	if line, ok := firstDifference(first.data, second.data); ok {
		writef(w, "✗ Exported documents differ at line %d\n", line)
		return errRoundTrip
	}
	writef(w, "✓ Round trip stable: %d host entities, %d bytes\n", first.host.Len(), len(first.data))
	return nil
}

// pass imports data into a fresh host and exports it back to memory.
func (a *app) pass(data []byte, name string) (*roundTrip, error) {
	h := memhost.New()
	opts := append(a.options(),
		converter.WithBytes(data),
		converter.WithSourceName(name),
		converter.WithHost(h),
		converter.WithIDFunc(mapper.SequentialIDs()),
	)
	imported, err := converter.ImportWithOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", name, err)
	}

	exported, err := converter.ExportWithOptions(append(a.options(), converter.WithHost(h))...)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", name, err)
	}

	rt := &roundTrip{host: h, data: exported.Data}
	rt.report = imported.Report
	rt.report.Issues = append(rt.report.Issues, exported.Issues...)
	rt.report.InfoCount += exported.InfoCount
	rt.report.WarningCount += exported.WarningCount
	rt.report.CriticalCount += exported.CriticalCount
	rt.report.Success = imported.Success && exported.Success
	return rt, nil
}

// firstDifference returns the 1-based line at which a and b first differ.
func firstDifference(a, b []byte) (int, bool) {
	if bytes.Equal(a, b) {
		return 0, false
	}
	la := bytes.Split(a, []byte("\n"))
	lb := bytes.Split(b, []byte("\n"))
	for i := 0; i < len(la) && i < len(lb); i++ {
		if !bytes.Equal(la[i], lb[i]) {
			return i + 1, true
		}
	}
	return min(len(la), len(lb)) + 1, true
}
