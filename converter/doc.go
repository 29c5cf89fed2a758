// Package converter converts yWriter 7 projects to and from the project
// model and novx host projects.
//
// An import runs the whole read pipeline: the byte stream is decoded by the
// sanitizer (declared encoding first, then the fallback encodings), repaired
// by xmlfix, and parsed by yw7.Reader. ImportInto additionally maps the model
// into a [host.Project]. An export runs the reverse: ExportFrom maps a host
// project back into the model, and yw7.Writer serializes it.
//
// # Quick Start
//
// Import a file using functional options:
//
//	result, err := converter.ImportWithOptions(
//		converter.WithFilePath("novel.yw7"),
//		converter.WithHost(project),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, issue := range result.Issues {
//		fmt.Println(issue)
//	}
//
// Or use a reusable Converter instance:
//
//	c := converter.New()
//	c.StrictMode = true
//	result, err := c.ExportFrom(project, "novel.yw7")
//
// # Conversion Issues
//
// Fatal problems abort the conversion and are returned as errors from
// package ywerrors; no partial model or host entity is kept. Recoverable
// problems are collected as issues: dangling references and unsupported
// fields are warnings, encoding fallbacks and structural repairs are info
// messages. In strict mode any warning fails the conversion; the returned
// result is still complete and [IsStrictFailure] reports the case.
//
// # Metrics
//
// Set Converter.Metrics (or use WithMetrics) to count conversions, issues
// and repairs in Prometheus. [Metrics.Handler] serves them.
package converter
