package converter

import (
	"fmt"
	"io"

	"github.com/erraggy/yw7tools/host"
	"github.com/erraggy/yw7tools/internal/options"
	"github.com/erraggy/yw7tools/mapper"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/sanitizer"
	"github.com/erraggy/yw7tools/yw7"
	"github.com/erraggy/yw7tools/ywerrors"
)

// Option is a function that configures a conversion operation
type Option func(*convertConfig) error

// convertConfig holds configuration for a conversion operation
type convertConfig struct {
	// Input sources
	filePath *string
	data     []byte
	hasData  bool
	reader   io.Reader
	project  *model.Project
	host     host.Project

	// Output
	outputPath string
	writer     io.Writer

	// Configuration
	name        string
	logger      yw7.Logger
	fallbacks   []string
	strict      bool
	includeInfo bool
	indent      string
	backup      bool
	lockCheck   bool
	metrics     *Metrics
	newID       mapper.IDFunc
}

// ImportWithOptions imports a yw7 document using functional options.
//
// Exactly one of WithFilePath, WithBytes or WithReader names the input.
// WithHost, when given, receives the imported project.
//
// Example:
//
//	result, err := converter.ImportWithOptions(
//	    converter.WithFilePath("novel.yw7"),
//	    converter.WithHost(project),
//	    converter.WithStrictMode(true),
//	)
func ImportWithOptions(opts ...Option) (*ImportResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("converter: invalid options: %w", err)
	}
	if err := options.ValidateSingleInputSource(
		"no input source specified: use WithFilePath, WithBytes or WithReader",
		"multiple input sources specified: use only one of WithFilePath, WithBytes or WithReader",
		cfg.filePath != nil, cfg.hasData, cfg.reader != nil,
	); err != nil {
		return nil, fmt.Errorf("converter: invalid options: %w", err)
	}
	if cfg.project != nil {
		return nil, fmt.Errorf("converter: invalid options: %w", &ywerrors.ConfigError{
			Option:  "WithProject",
			Message: "a model project is an export source, not an import destination",
		})
	}
	c := cfg.converter()

	if cfg.filePath != nil {
		path := *cfg.filePath
		return c.runImport(func() (*ImportResult, error) { return c.importFile(path) }, cfg.host)
	}

	data := cfg.data
	if cfg.reader != nil {
		data, err = io.ReadAll(cfg.reader)
		if err != nil {
			return nil, fmt.Errorf("converter: failed to read input: %w", err)
		}
	}
	return c.runImport(func() (*ImportResult, error) { return c.importBytes(data, cfg.name) }, cfg.host)
}

// ExportWithOptions exports a yw7 document using functional options.
//
// Exactly one of WithProject or WithHost names the source. At most one of
// WithOutputPath or WithWriter names the destination; with neither, the
// document is only returned in ExportResult.Data.
//
// Example:
//
//	result, err := converter.ExportWithOptions(
//	    converter.WithHost(project),
//	    converter.WithOutputPath("novel.yw7"),
//	)
func ExportWithOptions(opts ...Option) (*ExportResult, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("converter: invalid options: %w", err)
	}
	if err := options.ValidateSingleInputSource(
		"no export source specified: use WithProject or WithHost",
		"multiple export sources specified: use only one of WithProject or WithHost",
		cfg.project != nil, cfg.host != nil,
	); err != nil {
		return nil, fmt.Errorf("converter: invalid options: %w", err)
	}
	if cfg.filePath != nil || cfg.hasData || cfg.reader != nil {
		return nil, fmt.Errorf("converter: invalid options: %w", &ywerrors.ConfigError{
			Option:  "input",
			Message: "WithFilePath, WithBytes and WithReader are import sources",
		})
	}
	if err := options.ValidateAtMostOne("output",
		"use only one of WithOutputPath or WithWriter",
		cfg.outputPath != "", cfg.writer != nil,
	); err != nil {
		return nil, fmt.Errorf("converter: invalid options: %w", err)
	}
	c := cfg.converter()

	var res *ExportResult
	if cfg.host != nil {
		res, err = c.ExportFrom(cfg.host, cfg.outputPath)
	} else {
		res, err = c.Export(cfg.project, cfg.outputPath)
	}
	if err != nil || cfg.writer == nil {
		return res, err
	}
	if _, err := cfg.writer.Write(res.Data); err != nil {
		return nil, &ywerrors.WriteIOError{Op: "write", Cause: err}
	}
	return res, nil
}

// applyOptions applies option functions and returns the configuration
func applyOptions(opts ...Option) (*convertConfig, error) {
	cfg := &convertConfig{
		logger:      yw7.NopLogger{},
		includeInfo: true,
		indent:      yw7.DefaultIndent,
		backup:      true,
		lockCheck:   true,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (cfg *convertConfig) converter() *Converter {
	return &Converter{
		StrictMode:        cfg.strict,
		IncludeInfo:       cfg.includeInfo,
		FallbackEncodings: cfg.fallbacks,
		Indent:            cfg.indent,
		Backup:            cfg.backup,
		LockCheck:         cfg.lockCheck,
		Logger:            cfg.logger,
		Metrics:           cfg.metrics,
		NewID:             cfg.newID,
	}
}

// WithFilePath specifies the yw7 file to import
func WithFilePath(path string) Option {
	return func(cfg *convertConfig) error {
		if path == "" {
			return &ywerrors.ConfigError{Option: "WithFilePath", Message: "file path cannot be empty"}
		}
		cfg.filePath = &path
		return nil
	}
}

// WithBytes specifies an in-memory yw7 document to import
func WithBytes(data []byte) Option {
	return func(cfg *convertConfig) error {
		if data == nil {
			return &ywerrors.ConfigError{Option: "WithBytes", Message: "data cannot be nil"}
		}
		cfg.data = data
		cfg.hasData = true
		return nil
	}
}

// WithReader specifies a reader supplying the yw7 document to import
func WithReader(r io.Reader) Option {
	return func(cfg *convertConfig) error {
		if r == nil {
			return &ywerrors.ConfigError{Option: "WithReader", Message: "reader cannot be nil"}
		}
		cfg.reader = r
		return nil
	}
}

// WithSourceName labels in-memory input in errors and issues
func WithSourceName(name string) Option {
	return func(cfg *convertConfig) error {
		cfg.name = name
		return nil
	}
}

// WithHost specifies the host project: the destination of an import or the
// source of an export
func WithHost(p host.Project) Option {
	return func(cfg *convertConfig) error {
		if p == nil {
			return &ywerrors.ConfigError{Option: "WithHost", Message: "host project cannot be nil"}
		}
		cfg.host = p
		return nil
	}
}

// WithProject specifies the model project to export
func WithProject(p *model.Project) Option {
	return func(cfg *convertConfig) error {
		if p == nil {
			return &ywerrors.ConfigError{Option: "WithProject", Message: "project cannot be nil"}
		}
		cfg.project = p
		return nil
	}
}

// WithOutputPath specifies the yw7 file an export writes
func WithOutputPath(path string) Option {
	return func(cfg *convertConfig) error {
		if path == "" {
			return &ywerrors.ConfigError{Option: "WithOutputPath", Message: "output path cannot be empty"}
		}
		cfg.outputPath = path
		return nil
	}
}

// WithWriter specifies a writer receiving the exported document
func WithWriter(w io.Writer) Option {
	return func(cfg *convertConfig) error {
		if w == nil {
			return &ywerrors.ConfigError{Option: "WithWriter", Message: "writer cannot be nil"}
		}
		cfg.writer = w
		return nil
	}
}

// WithLogger sets the logger receiving diagnostics
func WithLogger(l yw7.Logger) Option {
	return func(cfg *convertConfig) error {
		if l == nil {
			l = yw7.NopLogger{}
		}
		cfg.logger = l
		return nil
	}
}

// WithFallbackEncodings sets the encodings tried, in order, when the
// declared encoding fails to decode the input
func WithFallbackEncodings(names ...string) Option {
	return func(cfg *convertConfig) error {
		for _, name := range names {
			if !sanitizer.Supported(name) {
				return &ywerrors.ConfigError{Option: "WithFallbackEncodings", Value: name, Message: "unknown encoding"}
			}
		}
		cfg.fallbacks = append([]string(nil), names...)
		return nil
	}
}

// WithStrictMode enables strict mode: any warning fails the conversion
func WithStrictMode(strict bool) Option {
	return func(cfg *convertConfig) error {
		cfg.strict = strict
		return nil
	}
}

// WithIncludeInfo enables or disables informational messages
// Default: true
func WithIncludeInfo(include bool) Option {
	return func(cfg *convertConfig) error {
		cfg.includeInfo = include
		return nil
	}
}

// WithIndent sets the indentation unit of exported documents
// Default: a tab
func WithIndent(indent string) Option {
	return func(cfg *convertConfig) error {
		for _, r := range indent {
			if r != ' ' && r != '\t' {
				return &ywerrors.ConfigError{Option: "WithIndent", Value: indent, Message: "indent must be spaces or tabs"}
			}
		}
		cfg.indent = indent
		return nil
	}
}

// WithBackup keeps the replaced document as <path>.bak on export
// Default: true
func WithBackup(backup bool) Option {
	return func(cfg *convertConfig) error {
		cfg.backup = backup
		return nil
	}
}

// WithLockCheck refuses to touch a project yWriter holds open
// Default: true
func WithLockCheck(check bool) Option {
	return func(cfg *convertConfig) error {
		cfg.lockCheck = check
		return nil
	}
}

// WithMetrics records conversions in m
func WithMetrics(m *Metrics) Option {
	return func(cfg *convertConfig) error {
		cfg.metrics = m
		return nil
	}
}

// WithIDFunc sets the host ID allocator used when importing into a host
// Default: mapper.UUIDs
func WithIDFunc(f mapper.IDFunc) Option {
	return func(cfg *convertConfig) error {
		cfg.newID = f
		return nil
	}
}
