package commands

import (
	"fmt"
	"os"

	"github.com/erraggy/yw7tools/sanitizer"
	"github.com/erraggy/yw7tools/xmlfix"
	"github.com/spf13/cobra"
)

func newRepairCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [flags] <file.yw7|->",
		Short: "Repair the XML structure of a yw7 document",
		Long: `Decode a yWriter 7 document, whatever its encoding, and repair its XML
structure: overlapping formatting tags, stray or missing end tags, and
unescaped characters. The repaired document is written as UTF-8.
The project itself is not read; use check for that.`,
		Example: `  yw7tools repair broken.yw7 -o fixed.yw7
  yw7tools repair --fallback windows-1252 old.yw7 > fixed.yw7`,
		Args: cobra.ExactArgs(1),
		RunE: a.runRepair,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "file to write the repaired document to (default: stdout)")
	f.StringSlice("fallback", nil, "fallback encodings tried when the declared one fails (default utf-16,windows-1252)")
	return cmd
}

func (a *app) runRepair(cmd *cobra.Command, args []string) error {
	input := args[0]
	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err := ValidateOutputPath(output, input); err != nil {
			return err
		}
	}

	raw, err := readInput(input, a.stdin)
	if err != nil {
		return fmt.Errorf("reading %s: %w", FormatInputPath(input), err)
	}
	dec, err := sanitizer.Decode(raw,
		sanitizer.WithPath(FormatInputPath(input)),
		sanitizer.WithFallbacks(a.cfg.Encoding.Fallbacks...),
	)
	if err != nil {
		return err
	}
	fixed, err := xmlfix.Fix(dec.Text)
	if err != nil {
		return err
	}

	w := a.diag(cmd)
	writef(w, "yWriter 7 Repair\n")
	writef(w, "================\n\n")
	writef(w, "Document: %s\n", FormatInputPath(input))
	writef(w, "Encoding: %s (%s)\n\n", dec.Encoding, dec.Source)
	if len(fixed.Repairs) > 0 {
		writef(w, "Repairs (%d):\n", len(fixed.Repairs))
		for _, r := range fixed.Repairs {
			writef(w, "  %s\n", r.String())
		}
		writef(w, "\n")
		writef(w, "✓ Document repaired\n")
	} else {
		writef(w, "✓ Document is well-formed\n")
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(fixed.Text), 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		writef(w, "\nOutput written to: %s\n", output)
		return nil
	}
	if _, err := a.stdout.Write([]byte(fixed.Text)); err != nil {
		return fmt.Errorf("writing document to stdout: %w", err)
	}
	return nil
}
