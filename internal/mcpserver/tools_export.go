package mcpserver

import (
	"context"

	"github.com/erraggy/yw7tools/converter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type exportInput struct {
	Snapshot snapshotInput `json:"snapshot"          jsonschema:"The host project snapshot to export"`
	Output   string        `json:"output,omitempty"  jsonschema:"The .yw7 file to write. If omitted the document is returned inline."`
	Strict   bool          `json:"strict,omitempty"  jsonschema:"Fail on any warning without writing anything"`
	NoInfo   bool          `json:"no_info,omitempty" jsonschema:"Drop informational issues"`
}

type exportOutput struct {
	Title      string        `json:"title,omitempty"`
	Success    bool          `json:"success"`
	IssueCount int           `json:"issue_count"`
	Issues     []issueOutput `json:"issues,omitempty"`
	WrittenTo  string        `json:"written_to,omitempty"`
	Document   string        `json:"document,omitempty"`
}

func (ts *toolset) handleExport(ctx context.Context, _ *mcp.CallToolRequest, input exportInput) (*mcp.CallToolResult, exportOutput, error) {
	h, err := input.Snapshot.resolve()
	if err != nil {
		return errResult(err), exportOutput{}, nil
	}

	opts := ts.options(ctx, "yw7_export",
		converter.WithHost(h),
		converter.WithStrictMode(input.Strict || cfg.Strict),
		converter.WithIncludeInfo(!input.NoInfo && !cfg.NoInfo),
	)
	if input.Output != "" {
		opts = append(opts, converter.WithOutputPath(input.Output))
	}

	result, err := converter.ExportWithOptions(opts...)
	if err != nil && !converter.IsStrictFailure(err) {
		return errResult(err), exportOutput{}, nil
	}

	output := exportOutput{
		Success:    err == nil && result.Success,
		IssueCount: len(result.Issues),
		Issues:     issueOutputs(result.Issues),
	}
	if result.Project != nil {
		output.Title = result.Project.Title
	}
	if err != nil {
		return nil, output, nil
	}
	if input.Output != "" {
		output.WrittenTo = input.Output
	} else {
		output.Document = string(result.Data)
	}
	return nil, output, nil
}
