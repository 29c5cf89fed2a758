package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/erraggy/yw7tools/sanitizer"
	"github.com/erraggy/yw7tools/xmlfix"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type repairInput struct {
	Document documentInput `json:"document"         jsonschema:"The yw7 document to repair"`
	Output   string        `json:"output,omitempty" jsonschema:"File to write the repaired UTF-8 document to. If omitted the document is returned inline."`
}

type repairOutput struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type repairResultOutput struct {
	Encoding    string         `json:"encoding"`
	Changed     bool           `json:"changed"`
	RepairCount int            `json:"repair_count"`
	Repairs     []repairOutput `json:"repairs,omitempty"`
	WrittenTo   string         `json:"written_to,omitempty"`
	Document    string         `json:"document,omitempty"`
}

func (ts *toolset) handleRepair(ctx context.Context, _ *mcp.CallToolRequest, input repairInput) (*mcp.CallToolResult, repairResultOutput, error) {
	if err := input.Document.check(); err != nil {
		return errResult(err), repairResultOutput{}, nil
	}

	raw := []byte(input.Document.Content)
	name := inlineSourceName
	if input.Document.File != "" {
		data, err := os.ReadFile(input.Document.File)
		if err != nil {
			return errResult(fmt.Errorf("failed to read document: %w", err)), repairResultOutput{}, nil
		}
		raw = data
		name = input.Document.File
	}

	dec, err := sanitizer.Decode(raw, sanitizer.WithPath(name))
	if err != nil {
		return errResult(err), repairResultOutput{}, nil
	}
	fixed, err := xmlfix.Fix(dec.Text)
	if err != nil {
		return errResult(err), repairResultOutput{}, nil
	}

	ts.logger(ctx, "yw7_repair").Info("repaired document",
		"document", name, "encoding", dec.Encoding, "repairs", len(fixed.Repairs))

	output := repairResultOutput{
		Encoding:    dec.Encoding,
		Changed:     fixed.Changed() || dec.Encoding != "utf-8",
		RepairCount: len(fixed.Repairs),
		Repairs:     makeSlice[repairOutput](len(fixed.Repairs)),
	}
	for _, r := range fixed.Repairs {
		output.Repairs = append(output.Repairs, repairOutput{Line: r.Line, Message: r.Message})
	}

	if input.Output != "" {
		if err := os.WriteFile(input.Output, []byte(fixed.Text), 0o644); err != nil {
			return errResult(fmt.Errorf("failed to write output file: %w", err)), repairResultOutput{}, nil
		}
		output.WrittenTo = input.Output
	} else {
		output.Document = fixed.Text
	}
	return nil, output, nil
}
