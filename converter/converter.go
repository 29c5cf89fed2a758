package converter

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/erraggy/yw7tools/host"
	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/internal/severity"
	"github.com/erraggy/yw7tools/mapper"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/sanitizer"
	"github.com/erraggy/yw7tools/xmlfix"
	"github.com/erraggy/yw7tools/yw7"
	"github.com/erraggy/yw7tools/ywerrors"
)

// Severity indicates the severity level of a conversion issue
type Severity = severity.Severity

const (
	// SeverityInfo indicates informational messages about conversion choices
	SeverityInfo = severity.SeverityInfo
	// SeverityWarning indicates a dropped or defaulted reference or field
	SeverityWarning = severity.SeverityWarning
	// SeverityCritical indicates data that cannot be carried across
	SeverityCritical = severity.SeverityCritical
)

// Issue represents a single conversion issue
type Issue = issues.Issue

// Direction names the side a conversion starts from.
type Direction string

const (
	// DirectionImport converts a yw7 document into the model or a host project.
	DirectionImport Direction = "import"
	// DirectionExport converts the model or a host project into a yw7 document.
	DirectionExport Direction = "export"
)

// Report holds the issues of one conversion and their counts.
type Report struct {
	// Issues lists every non-fatal problem, in the order it was found
	Issues []Issue
	// InfoCount is the total number of info messages
	InfoCount int
	// WarningCount is the total number of warnings
	WarningCount int
	// CriticalCount is the total number of critical issues
	CriticalCount int
	// Success is true if conversion completed without critical issues
	Success bool
}

// HasCriticalIssues returns true if there are any critical issues
func (r *Report) HasCriticalIssues() bool {
	return r.CriticalCount > 0
}

// HasWarnings returns true if there are any warnings
func (r *Report) HasWarnings() bool {
	return r.WarningCount > 0
}

// ImportResult contains the results of importing a yw7 document
type ImportResult struct {
	Report
	// Project is the imported model
	Project *model.Project
	// HostIDs maps model entities to host IDs; set by ImportInto only
	HostIDs map[mapper.Ref]string
	// SourcePath is the imported file, empty for in-memory input
	SourcePath string
	// Encoding is the canonical name of the encoding that decoded the file
	Encoding string
	// EncodingSource tells how Encoding was determined
	EncodingSource sanitizer.Source
	// Repairs is the number of structural repairs applied before parsing
	Repairs int
}

func (r *ImportResult) observed() ([]Issue, int) {
	if r == nil {
		return nil, 0
	}
	return r.Issues, r.Repairs
}

// ExportResult contains the results of exporting a yw7 document
type ExportResult struct {
	Report
	// Project is the exported model; for ExportFrom it is the model read from the host
	Project *model.Project
	// Data is the serialized document
	Data []byte
	// OutputPath is the written file, empty when nothing was written to disk
	OutputPath string
}

func (r *ExportResult) observed() ([]Issue, int) {
	if r == nil {
		return nil, 0
	}
	return r.Issues, 0
}

// Converter converts between yWriter 7 documents, the project model and
// host projects.
type Converter struct {
	// StrictMode causes conversion to fail on any warning or critical issue
	StrictMode bool
	// IncludeInfo determines whether to include informational messages
	IncludeInfo bool
	// FallbackEncodings overrides the encodings tried when the declared one
	// fails. Empty means sanitizer.DefaultFallbacks.
	FallbackEncodings []string
	// Indent is the indentation of written documents
	Indent string
	// Backup keeps the replaced document as <path>.bak on export
	Backup bool
	// LockCheck refuses to read or write a project open in yWriter
	LockCheck bool
	// Logger receives diagnostics
	Logger yw7.Logger
	// Metrics records conversion counters; nil disables them
	Metrics *Metrics
	// NewID allocates host IDs in ImportInto. Defaults to mapper.UUIDs.
	NewID mapper.IDFunc
}

// New creates a new Converter instance with default settings
func New() *Converter {
	return &Converter{
		IncludeInfo: true,
		Indent:      yw7.DefaultIndent,
		Backup:      true,
		LockCheck:   true,
		Logger:      yw7.NopLogger{},
	}
}

// Import is a convenience function that imports a yw7 file with a default
// Converter.
//
// Example:
//
//	result, err := converter.Import("novel.yw7")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Project.Title)
func Import(path string) (*ImportResult, error) {
	return New().Import(path)
}

// ImportInto is a convenience function that imports a yw7 file into dst
// with a default Converter.
func ImportInto(path string, dst host.Project) (*ImportResult, error) {
	return New().ImportInto(path, dst)
}

// Export is a convenience function that writes p to path with a default
// Converter.
func Export(p *model.Project, path string) (*ExportResult, error) {
	return New().Export(p, path)
}

// ExportFrom is a convenience function that writes the host project src to
// path with a default Converter.
func ExportFrom(src host.Project, path string) (*ExportResult, error) {
	return New().ExportFrom(src, path)
}

// Import reads the yw7 file at path into the model.
func (c *Converter) Import(path string) (*ImportResult, error) {
	return c.runImport(func() (*ImportResult, error) { return c.importFile(path) }, nil)
}

// ImportInto reads the yw7 file at path and populates dst with it.
// dst is left untouched when reading fails, or when strict mode rejects
// the document before mapping.
func (c *Converter) ImportInto(path string, dst host.Project) (*ImportResult, error) {
	if dst == nil {
		return nil, &ywerrors.ConfigError{Option: "dst", Message: "host project cannot be nil"}
	}
	return c.runImport(func() (*ImportResult, error) { return c.importFile(path) }, dst)
}

// ImportBytes reads an in-memory yw7 document. name labels the document in
// errors and issues and may be empty.
func (c *Converter) ImportBytes(data []byte, name string) (*ImportResult, error) {
	return c.runImport(func() (*ImportResult, error) { return c.importBytes(data, name) }, nil)
}

// runImport reads a document and, when dst is set, maps it into dst.
func (c *Converter) runImport(read func() (*ImportResult, error), dst host.Project) (*ImportResult, error) {
	start := time.Now()
	res, err := read()
	if err == nil && dst != nil {
		err = c.mapInto(res, dst)
	}
	res, err = c.finishImport(res, err)
	c.Metrics.observe(DirectionImport, start, res, err)
	if err == nil {
		c.logger().Info("imported yw7 project", "path", res.SourcePath, "issues", len(res.Issues))
	}
	return res, err
}

// Export writes p to the yw7 file at path.
func (c *Converter) Export(p *model.Project, path string) (*ExportResult, error) {
	start := time.Now()
	res := &ExportResult{Project: p}
	res, err := c.finishExport(res, c.export(res, path))
	c.Metrics.observe(DirectionExport, start, res, err)
	return res, err
}

// ExportFrom reads the host project src into the model and writes it to the
// yw7 file at path.
func (c *Converter) ExportFrom(src host.Project, path string) (*ExportResult, error) {
	start := time.Now()
	res, err := c.fromHost(src)
	if err == nil {
		err = c.export(res, path)
	}
	res, err = c.finishExport(res, err)
	c.Metrics.observe(DirectionExport, start, res, err)
	return res, err
}

func (c *Converter) logger() yw7.Logger {
	if c.Logger == nil {
		return yw7.NopLogger{}
	}
	return c.Logger
}

func (c *Converter) importFile(path string) (*ImportResult, error) {
	if c.LockCheck && yw7.IsLocked(path) {
		return nil, fmt.Errorf("converter: %w: %s is open in yWriter", ywerrors.ErrLocked, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("converter: failed to read %s: %w", path, err)
	}
	return c.importBytes(data, path)
}

func (c *Converter) importBytes(data []byte, path string) (*ImportResult, error) {
	log := c.logger().With("path", path)

	opts := []sanitizer.Option{sanitizer.WithPath(path)}
	if len(c.FallbackEncodings) > 0 {
		opts = append(opts, sanitizer.WithFallbacks(c.FallbackEncodings...))
	}
	dec, err := sanitizer.Decode(data, opts...)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{
		SourcePath:     path,
		Encoding:       dec.Encoding,
		EncodingSource: dec.Source,
	}
	var list issues.List
	if dec.Source == sanitizer.SourceFallback {
		list.Info(issues.KindEncoding, "", "decoded as %s after %s failed",
			dec.Encoding, strings.Join(dec.Tried, ", "))
		log.Warn("encoding fallback", "declared", dec.Declared, "encoding", dec.Encoding)
	}

	fixed, err := xmlfix.Fix(dec.Text)
	if err != nil {
		var ue *ywerrors.UnrepairableDocumentError
		if errors.As(err, &ue) && ue.Path == "" {
			ue.Path = path
		}
		return nil, err
	}
	res.Repairs = len(fixed.Repairs)
	for _, r := range fixed.Repairs {
		list.Add(Issue{
			Kind:     issues.KindRepair,
			Message:  r.Message,
			Severity: SeverityInfo,
			Line:     r.Line,
			File:     path,
		})
	}
	if fixed.Changed() {
		log.Info("repaired document", "repairs", res.Repairs)
	}

	r := &yw7.Reader{Path: path, Logger: c.logger()}
	read, err := r.Read(fixed.Text)
	if err != nil {
		return nil, err
	}
	res.Project = read.Project
	res.Issues = append(list, read.Issues...)
	return res, nil
}

func (c *Converter) mapInto(res *ImportResult, dst host.Project) error {
	if c.StrictMode {
		updateCounts(&res.Report)
		if err := strictError(&res.Report); err != nil {
			return err
		}
	}
	m := &mapper.Mapper{NewID: c.NewID, Logger: c.logger()}
	mapped, err := m.ToHost(res.Project, dst)
	if err != nil {
		return err
	}
	res.HostIDs = mapped.HostIDs
	res.Issues = append(res.Issues, mapped.Issues...)
	return nil
}

func (c *Converter) fromHost(src host.Project) (*ExportResult, error) {
	m := &mapper.Mapper{NewID: c.NewID, Logger: c.logger()}
	mapped, err := m.FromHost(src)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Project: mapped.Project, Report: Report{Issues: mapped.Issues}}, nil
}

// export serializes res.Project. In strict mode the document is checked in
// memory first so a rejected export never touches path.
func (c *Converter) export(res *ExportResult, path string) error {
	w := &yw7.Writer{
		Path:      path,
		Indent:    c.Indent,
		Logger:    c.logger(),
		Backup:    c.Backup,
		LockCheck: c.LockCheck,
	}
	var (
		written *yw7.WriteResult
		err     error
	)
	if path == "" || c.StrictMode {
		written, err = w.Write(res.Project)
		if err != nil {
			return err
		}
		if c.StrictMode {
			check := Report{Issues: append(res.Issues, written.Issues...)}
			updateCounts(&check)
			if err := strictError(&check); err != nil {
				res.Issues = check.Issues
				return err
			}
		}
	}
	if path != "" {
		written, err = w.WriteFile(res.Project, path)
		if err != nil {
			return err
		}
		res.OutputPath = path
	}
	res.Data = written.Data
	res.Issues = append(res.Issues, written.Issues...)
	return nil
}

func (c *Converter) finishImport(res *ImportResult, err error) (*ImportResult, error) {
	if res == nil {
		return nil, err
	}
	if err = c.finish(&res.Report, err); err != nil && !errors.Is(err, errStrict) {
		return nil, err
	}
	return res, err
}

func (c *Converter) finishExport(res *ExportResult, err error) (*ExportResult, error) {
	if res == nil {
		return nil, err
	}
	if err = c.finish(&res.Report, err); err != nil && !errors.Is(err, errStrict) {
		return nil, err
	}
	return res, err
}

// finish counts issues, applies strict mode and filters info messages.
// A strict-mode failure keeps the result; any other error discards it.
func (c *Converter) finish(r *Report, err error) error {
	if err != nil && !errors.Is(err, errStrict) {
		return err
	}
	updateCounts(r)
	r.Success = r.CriticalCount == 0
	if err == nil && c.StrictMode {
		err = strictError(r)
	}
	if err != nil {
		r.Success = false
	}
	if !c.IncludeInfo {
		r.Issues = issues.List(r.Issues).WithoutInfo()
		r.InfoCount = 0
	}
	return err
}

var errStrict = errors.New("conversion failed in strict mode")

func strictError(r *Report) error {
	if r.CriticalCount > 0 || r.WarningCount > 0 {
		return fmt.Errorf("%w: %d critical issue(s), %d warning(s)",
			errStrict, r.CriticalCount, r.WarningCount)
	}
	return nil
}

// IsStrictFailure reports whether err is a strict-mode rejection. The result
// returned alongside such an error is complete.
func IsStrictFailure(err error) bool {
	return errors.Is(err, errStrict)
}

// updateCounts updates the issue counts in the result
func updateCounts(r *Report) {
	r.InfoCount = 0
	r.WarningCount = 0
	r.CriticalCount = 0

	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityInfo:
			r.InfoCount++
		case SeverityWarning:
			r.WarningCount++
		case SeverityCritical:
			r.CriticalCount++
		}
	}
}
