package mcpserver

import (
	"context"

	"github.com/erraggy/yw7tools/converter"
	"github.com/erraggy/yw7tools/host/memhost"
	"github.com/erraggy/yw7tools/mapper"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type importInput struct {
	Document      documentInput `json:"document"                 jsonschema:"The yw7 document to import"`
	Output        string        `json:"output,omitempty"         jsonschema:"Snapshot file to write (.yaml\\, .toml or .json). If omitted the snapshot is returned inline."`
	Format        string        `json:"format,omitempty"         jsonschema:"Format of the inline snapshot: yaml (default)\\, toml or json"`
	Strict        bool          `json:"strict,omitempty"         jsonschema:"Fail on any warning"`
	NoInfo        bool          `json:"no_info,omitempty"        jsonschema:"Drop informational issues"`
	SequentialIDs bool          `json:"sequential_ids,omitempty" jsonschema:"Allocate readable host IDs (ch1\\, sc1\\, ...) instead of UUIDs"`
}

type importOutput struct {
	Title      string        `json:"title"`
	Success    bool          `json:"success"`
	Entities   int           `json:"entities"`
	IssueCount int           `json:"issue_count"`
	Issues     []issueOutput `json:"issues,omitempty"`
	WrittenTo  string        `json:"written_to,omitempty"`
	Snapshot   string        `json:"snapshot,omitempty"`
}

func (ts *toolset) handleImport(ctx context.Context, _ *mcp.CallToolRequest, input importInput) (*mcp.CallToolResult, importOutput, error) {
	if err := input.Document.check(); err != nil {
		return errResult(err), importOutput{}, nil
	}
	format := memhost.FormatYAML
	if input.Output != "" {
		f, err := memhost.FormatForPath(input.Output)
		if err != nil {
			return errResult(err), importOutput{}, nil
		}
		format = f
	} else if input.Format != "" {
		format = memhost.Format(input.Format)
	}

	h := memhost.New()
	opts := ts.options(ctx, "yw7_import", input.Document.options()...)
	opts = append(opts,
		converter.WithHost(h),
		converter.WithStrictMode(input.Strict || cfg.Strict),
		converter.WithIncludeInfo(!input.NoInfo && !cfg.NoInfo),
	)
	if input.SequentialIDs {
		opts = append(opts, converter.WithIDFunc(mapper.SequentialIDs()))
	}

	result, err := converter.ImportWithOptions(opts...)
	if err != nil && !converter.IsStrictFailure(err) {
		return errResult(err), importOutput{}, nil
	}

	output := importOutput{
		Title:      result.Project.Title,
		Success:    err == nil && result.Success,
		IssueCount: len(result.Issues),
		Issues:     issueOutputs(result.Issues),
	}
	if err != nil {
		return nil, output, nil
	}
	output.Entities = h.Len()

	if input.Output != "" {
		if err := h.Save(input.Output); err != nil {
			return errResult(err), importOutput{}, nil
		}
		output.WrittenTo = input.Output
		return nil, output, nil
	}
	data, err := h.Marshal(format)
	if err != nil {
		return errResult(err), importOutput{}, nil
	}
	output.Snapshot = string(data)
	return nil, output, nil
}
