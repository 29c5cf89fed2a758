// Package yw7tools provides tools for converting yWriter 7 (.yw7) projects
// to and from a novx host project.
//
// The library reads and writes the yw7 XML format, repairs damaged documents,
// and maps the project onto any host that implements host.Project.
//
// # Overview
//
// The library consists of these packages:
//
//   - converter: import and export entry points with issue reporting and metrics
//   - yw7: the yw7 reader and writer
//   - model: the format-neutral project model both sides map through
//   - mapper: translation between the model and a host project
//   - host: the host capability interface; host/memhost is an in-memory host
//   - sanitizer: encoding detection and decoding of raw yw7 bytes
//   - xmlfix: structural repair of malformed yw7 XML
//   - ywerrors: error types and sentinels shared by all packages
//
// # Installation
//
// Install the library using go get:
//
//	go get github.com/erraggy/yw7tools
//
// Install the command line tool:
//
//	go install github.com/erraggy/yw7tools/cmd/yw7tools@latest
//
// # Quick Start
//
// Import a yw7 project into a host:
//
//	project := memhost.New()
//	result, err := converter.ImportInto("novel.yw7", project)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, issue := range result.Issues {
//		fmt.Println(issue.String())
//	}
//
// Export it back:
//
//	result, err := converter.ExportFrom(project, "novel.yw7")
//
// The previous file is kept as novel.yw7.bak, and a project that yWriter
// holds open (novel.yw7.lock exists) is never touched.
//
// # Conversion Issues
//
// Lossy or suspicious input never aborts a conversion. Dangling references,
// unsupported fields and markup, defaulted values, repairs and encoding
// fallbacks are reported as issues of info, warning or critical severity.
// Strict mode turns any warning into a failure.
//
// # Command Line
//
// The yw7tools command wraps the converter:
//
//	yw7tools import novel.yw7 -o novel.yaml
//	yw7tools export novel.yaml -o novel.yw7
//	yw7tools check novel.yw7
//	yw7tools repair broken.yw7 -o fixed.yw7
//	yw7tools watch novel.yw7 --metrics-addr localhost:9090
//	yw7tools mcp
//
// See the converter package for the full API.
package yw7tools
