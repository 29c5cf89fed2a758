package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/erraggy/yw7tools/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectInput struct {
	Document documentInput `json:"document"          jsonschema:"The yw7 document to inspect"`
	Section  string        `json:"section,omitempty" jsonschema:"List entities of one section: chapters\\, scenes\\, characters\\, locations\\, items\\, plot_lines or project_notes"`
	Offset   int           `json:"offset,omitempty"  jsonschema:"Skip the first N listed entities"`
	Limit    int           `json:"limit,omitempty"   jsonschema:"Maximum number of listed entities"`
}

type entitySummary struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

type inspectOutput struct {
	Title          string          `json:"title"`
	Author         string          `json:"author,omitempty"`
	Encoding       string          `json:"encoding"`
	EncodingSource string          `json:"encoding_source"`
	Repairs        int             `json:"repairs"`
	Chapters       int             `json:"chapters"`
	Scenes         int             `json:"scenes"`
	Characters     int             `json:"characters"`
	Locations      int             `json:"locations"`
	Items          int             `json:"items"`
	PlotLines      int             `json:"plot_lines"`
	ProjectNotes   int             `json:"project_notes"`
	Languages      []string        `json:"languages,omitempty"`
	IssueCount     int             `json:"issue_count"`
	Issues         []issueOutput   `json:"issues,omitempty"`
	Section        string          `json:"section,omitempty"`
	Total          int             `json:"total,omitempty"`
	Entities       []entitySummary `json:"entities,omitempty"`
}

// sections lists the section names yw7_inspect accepts.
var sections = []string{"chapters", "scenes", "characters", "locations", "items", "plot_lines", "project_notes"}

func (ts *toolset) handleInspect(ctx context.Context, _ *mcp.CallToolRequest, input inspectInput) (*mcp.CallToolResult, inspectOutput, error) {
	var list []entitySummary
	section := strings.ToLower(input.Section)
	if section != "" && !validSection(section) {
		return errResult(fmt.Errorf("invalid section %q; valid values: %s", input.Section, strings.Join(sections, ", "))), inspectOutput{}, nil
	}

	result, err := input.Document.resolve(ts.options(ctx, "yw7_inspect"))
	if err != nil {
		return errResult(err), inspectOutput{}, nil
	}
	p := result.Project

	output := inspectOutput{
		Title:          p.Title,
		Author:         p.Author,
		Encoding:       result.Encoding,
		EncodingSource: string(result.EncodingSource),
		Repairs:        result.Repairs,
		Chapters:       len(p.Chapters),
		Scenes:         len(p.Scenes),
		Characters:     len(p.Characters),
		Locations:      len(p.Locations),
		Items:          len(p.Items),
		PlotLines:      len(p.PlotLines),
		ProjectNotes:   len(p.ProjectNotes),
		Languages:      p.Languages,
		IssueCount:     len(result.Issues),
		Issues:         issueOutputs(result.Issues),
	}

	if section != "" {
		list = summarize(p, section)
		output.Section = section
		output.Total = len(list)
		output.Entities = paginate(list, input.Offset, input.Limit)
	}
	return nil, output, nil
}

func validSection(s string) bool {
	for _, name := range sections {
		if name == s {
			return true
		}
	}
	return false
}

// summarize lists the entities of one section in project order.
func summarize(p *model.Project, section string) []entitySummary {
	var out []entitySummary
	switch section {
	case "chapters":
		out = makeSlice[entitySummary](len(p.Chapters))
		for _, c := range p.Chapters {
			out = append(out, entitySummary{ID: c.ID, Title: c.Title, Detail: fmt.Sprintf("%s, %d scenes", c.Type, len(c.Scenes))})
		}
	case "scenes":
		out = makeSlice[entitySummary](len(p.Scenes))
		for _, sc := range p.Scenes {
			out = append(out, entitySummary{ID: sc.ID, Title: sc.Title, Detail: sc.Type.String()})
		}
	case "characters":
		out = makeSlice[entitySummary](len(p.Characters))
		for _, c := range p.Characters {
			detail := "minor"
			if c.Major {
				detail = "major"
			}
			out = append(out, entitySummary{ID: c.ID, Title: c.Title, Detail: detail})
		}
	case "locations":
		out = worldSummaries(p.Locations)
	case "items":
		out = worldSummaries(p.Items)
	case "plot_lines":
		out = makeSlice[entitySummary](len(p.PlotLines))
		for _, pl := range p.PlotLines {
			out = append(out, entitySummary{ID: pl.ID, Title: pl.Title, Detail: fmt.Sprintf("%s, %d plot points", pl.ShortName, len(pl.Points))})
		}
	case "project_notes":
		out = makeSlice[entitySummary](len(p.ProjectNotes))
		for _, n := range p.ProjectNotes {
			out = append(out, entitySummary{ID: n.ID, Title: n.Title})
		}
	}
	return out
}

func worldSummaries(elems []*model.WorldElement) []entitySummary {
	out := makeSlice[entitySummary](len(elems))
	for _, e := range elems {
		out = append(out, entitySummary{ID: e.ID, Title: e.Title, Detail: e.AKA})
	}
	return out
}
