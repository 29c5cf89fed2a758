// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/yw7tools/model"
)

// NewSimpleProject creates a minimal valid project: a title and one chapter
// holding one scene.
func NewSimpleProject() *model.Project {
	return &model.Project{
		Title: "Test Novel",
		Chapters: []*model.Chapter{
			{ID: 1, Title: "Chapter One", Scenes: []int{1}},
		},
		Scenes: []*model.Scene{
			{ID: 1, Title: "Opening", Status: 1, Content: model.PlainText("It was a dark and stormy night.")},
		},
	}
}

// NewDetailedProject creates a project that exercises every entity kind,
// formatting, plot lines and typed custom fields.
func NewDetailedProject() *model.Project {
	content := model.Text{Paragraphs: []model.Paragraph{
		{Runs: []model.Run{
			{Text: "The "},
			{Text: "storm", Style: model.Style{Bold: true}},
			{Text: " came at "},
			{Text: "dusk", Style: model.Style{Bold: true, Italic: true}},
			{Text: "."},
		}},
		{Quotation: true, Runs: []model.Run{
			{Text: "Bonsoir", Style: model.Style{Lang: "fr"}},
			{Text: ", he said."},
			{Text: "A greeting.", Note: model.NoteFootnote},
		}},
		{},
		{Runs: []model.Run{
			{Text: "See "},
			{Text: "the log", Note: model.NoteComment},
			{Text: "an endnote", Note: model.NoteEndnote},
		}},
	}}

	var fields model.Fields
	fields.Set("Field_RenumberChapters", model.BoolValue(true))
	fields.Set("Field_WorkPhase", model.IntValue(2))
	fields.Set("Field_Genre", model.StringValue("Mystery"))

	return &model.Project{
		Title:          "The Lighthouse Keeper",
		Desc:           "A short novel.",
		Author:         "Jane Doe",
		WordCountStart: 1200,
		WordTarget:     60000,
		LanguageCode:   "en",
		CountryCode:    "GB",
		Languages:      []string{"fr"},
		Fields:         fields,
		Characters: []*model.Character{
			{ID: 1, Title: "Anna", FullName: "Anna Berg", Bio: "Keeper of the light.", Major: true, Tags: []string{"keeper"}},
			{ID: 2, Title: "Bert"},
		},
		Locations: []*model.WorldElement{
			{ID: 1, Title: "Harbor", AKA: "The Port", Tags: []string{"sea", "port"}},
		},
		Items: []*model.WorldElement{
			{ID: 1, Title: "Lantern"},
		},
		Chapters: []*model.Chapter{
			{ID: 1, Title: "Book One", Level: model.LevelPart},
			{ID: 2, Title: "Chapter 1", Scenes: []int{1, 2}},
			{ID: 3, Title: "Notes", Type: model.ChapterNotes, Scenes: []int{3}},
		},
		Scenes: []*model.Scene{
			{
				ID:         1,
				Title:      "Arrival",
				Desc:       "Anna meets Bert.",
				Content:    content,
				Status:     3,
				Tags:       []string{"opening"},
				Date:       "1889-05-01",
				Time:       "09:15:00",
				LastsHours: "2",
				Goal:       "Reach the lighthouse.",
				Kind:       model.KindAction,
				Characters: []int{1, 2},
				Locations:  []int{1},
				Items:      []int{1},
			},
			{
				ID:         2,
				Title:      "Night watch",
				Content:    model.PlainText("Bert kept watch."),
				Status:     1,
				Day:        "2",
				Time:       "22:05:00",
				Kind:       model.KindReaction,
				Characters: []int{2},
			},
			{ID: 3, Title: "Ideas", Type: model.SceneNotes, Status: 1, Content: model.PlainText("Maybe a shipwreck?")},
		},
		PlotLines: []*model.PlotLine{
			{
				ID:        1,
				Title:     "Main plot",
				ShortName: "M",
				Scenes:    []int{1},
				Points:    []*model.PlotPoint{{ID: 1, Title: "First meeting", Scene: 1}},
			},
		},
		ProjectNotes: []*model.ProjectNote{
			{ID: 1, Title: "Research", Desc: "Lighthouses of the North Sea."},
		},
		WordCountLog: []model.WordCount{
			{Date: "2024-01-01", Count: 1200, TotalCount: 1300},
			{Date: "2024-01-02", Count: 1500, TotalCount: 1600},
		},
	}
}

// SampleYW7Path is the path of the sample yWriter project, relative to a
// package directory one level below the module root.
const SampleYW7Path = "../testdata/sample.yw7"

// WriteTempFile writes data to name in a fresh temporary directory and
// returns the file path.
func WriteTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}
	return tmpFile
}

// WriteTempYAML marshals doc to YAML and writes it to a temporary file.
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}
	return WriteTempFile(t, "test.yaml", data)
}

// WriteTempJSON marshals doc to JSON and writes it to a temporary file.
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}
	return WriteTempFile(t, "test.json", data)
}
