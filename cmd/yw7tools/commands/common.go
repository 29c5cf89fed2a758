// Package commands provides the cobra command tree of yw7tools.
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/model"
)

// StdinFilePath is the special file path used to indicate reading from stdin
// or writing to stdout.
const StdinFilePath = "-"

// FormatInputPath returns a display-friendly path for an input.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatInputPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}

// ValidateOutputPath checks that the output path does not overwrite the input
// and is not a symlink.
func ValidateOutputPath(outputPath, inputPath string) error {
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if inputPath != StdinFilePath {
		absInput, err := filepath.Abs(inputPath)
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", inputPath, err)
		}
		if absOutput == absInput {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, inputPath)
		}
	}
	return RejectSymlinkOutput(filepath.Clean(outputPath))
}

// RejectSymlinkOutput checks if the output path is a symlink and returns an error if so.
// This prevents symlink attacks where a symlink could redirect output to an unintended location.
func RejectSymlinkOutput(cleanedPath string) error {
	info, err := os.Lstat(cleanedPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("commands: checking output path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("commands: refusing to write to symlink: %s", cleanedPath)
	}
	return nil
}

// writef writes formatted output to w. Output is best effort: a failed
// write is reported on stderr, unless stderr is the writer that failed.
func writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil && w != io.Writer(os.Stderr) {
		_, _ = fmt.Fprintf(os.Stderr, "yw7tools: write failed: %v\n", err)
	}
}

// readInput reads path, or stdin when path is StdinFilePath.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == StdinFilePath {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// OutputProjectStats writes the entity counts of p.
func OutputProjectStats(w io.Writer, p *model.Project) {
	if p == nil {
		return
	}
	writef(w, "Title: %s\n", p.Title)
	writef(w, "Chapters: %d\n", len(p.Chapters))
	writef(w, "Scenes: %d\n", len(p.Scenes))
	writef(w, "Characters: %d\n", len(p.Characters))
	writef(w, "Locations: %d\n", len(p.Locations))
	writef(w, "Items: %d\n", len(p.Items))
	writef(w, "Plot Lines: %d\n", len(p.PlotLines))
	writef(w, "Project Notes: %d\n", len(p.ProjectNotes))
}

// OutputIssues writes the issue list followed by the outcome summary line.
func OutputIssues(w io.Writer, verb string, r *converter.Report) {
	if len(r.Issues) > 0 {
		writef(w, "%s Issues (%d):\n", verb, len(r.Issues))
		for _, issue := range r.Issues {
			writef(w, "  %s\n", issue.String())
		}
		writef(w, "\n")
	}

	if r.Success {
		writef(w, "✓ %s successful", verb)
		if r.InfoCount > 0 || r.WarningCount > 0 {
			writef(w, " (%d info, %d warnings)", r.InfoCount, r.WarningCount)
		}
		writef(w, "\n")
		return
	}
	if r.CriticalCount == 0 {
		writef(w, "✗ %s rejected in strict mode: %d warning(s)\n", verb, r.WarningCount)
		return
	}
	writef(w, "✗ %s completed with %d critical issue(s)", verb, r.CriticalCount)
	if r.WarningCount > 0 {
		writef(w, ", %d warning(s)", r.WarningCount)
	}
	writef(w, "\n")
}
