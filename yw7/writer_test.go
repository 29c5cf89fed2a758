package yw7

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/internal/testutil"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/ywerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, p *model.Project) *WriteResult {
	t.Helper()
	res, err := NewWriter().Write(p)
	require.NoError(t, err)
	return res
}

func TestWriteSimpleProject(t *testing.T) {
	res := write(t, testutil.NewSimpleProject())
	out := string(res.Data)

	assert.True(t, strings.HasPrefix(out, Header), "document starts with the XML declaration")
	assert.Contains(t, out, "<YWRITER7>\n\t<PROJECT>\n\t\t<Ver>7</Ver>\n\t\t<Title><![CDATA[Test Novel]]></Title>")
	assert.Contains(t, out, "<SceneContent><![CDATA[It was a dark and stormy night.]]></SceneContent>")
	assert.Contains(t, out, "<Scenes>\n\t\t\t\t<ScID>1</ScID>\n\t\t\t</Scenes>")
	assert.Contains(t, out, "<Status>1</Status>")
	assert.True(t, strings.HasSuffix(out, "</YWRITER7>\n"))
	assert.Empty(t, res.Issues)
}

func TestWriteIsDeterministic(t *testing.T) {
	a := write(t, testutil.NewDetailedProject())
	b := write(t, testutil.NewDetailedProject())
	assert.Equal(t, string(a.Data), string(b.Data))
}

func TestWriteReadRoundTrip(t *testing.T) {
	orig := testutil.NewDetailedProject()
	first := write(t, orig)
	require.Empty(t, first.Issues)

	read, err := NewReader().Read(string(first.Data))
	require.NoError(t, err)
	require.Empty(t, read.Issues)
	p := read.Project

	assert.Equal(t, orig.Title, p.Title)
	assert.Equal(t, orig.Author, p.Author)
	assert.Equal(t, orig.WordTarget, p.WordTarget)
	assert.Equal(t, orig.LanguageCode, p.LanguageCode)
	assert.Equal(t, orig.CountryCode, p.CountryCode)
	assert.Equal(t, orig.Languages, p.Languages)
	assert.Equal(t, orig.Fields, p.Fields)
	assert.Equal(t, orig.WordCountLog, p.WordCountLog)

	require.Len(t, p.Chapters, len(orig.Chapters))
	for i, c := range orig.Chapters {
		assert.Equal(t, c.Title, p.Chapters[i].Title)
		assert.Equal(t, c.Level, p.Chapters[i].Level)
		assert.Equal(t, c.Type, p.Chapters[i].Type)
		assert.Equal(t, c.Scenes, p.Chapters[i].Scenes)
	}

	require.Len(t, p.Scenes, len(orig.Scenes))
	for i, want := range orig.Scenes {
		got := p.Scenes[i]
		assert.True(t, want.Content.Equal(got.Content), "scene %d content", want.ID)
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.Date, got.Date)
		assert.Equal(t, want.Time, got.Time)
		assert.Equal(t, want.Day, got.Day)
		assert.Equal(t, want.Tags, got.Tags)
		assert.Equal(t, want.Characters, got.Characters)
		assert.Equal(t, want.Locations, got.Locations)
		assert.Equal(t, want.Items, got.Items)
	}

	require.Len(t, p.Characters, 2)
	assert.True(t, p.Characters[0].Major)
	assert.Equal(t, []string{"keeper"}, p.Characters[0].Tags)

	require.Len(t, p.PlotLines, 1)
	pl := p.PlotLines[0]
	assert.Equal(t, "M", pl.ShortName)
	assert.Equal(t, 4, pl.ID, "plot lines follow the regular chapters")
	assert.Equal(t, []int{1}, pl.Scenes)
	require.Len(t, pl.Points, 1)
	assert.Equal(t, 4, pl.Points[0].ID, "plot points follow the regular scenes")
	assert.Equal(t, 1, pl.Points[0].Scene)

	second := write(t, p)
	assert.Equal(t, string(first.Data), string(second.Data), "write, read, write must be stable")
}

func TestWriteRenumbersIDs(t *testing.T) {
	p := &model.Project{
		Title:      "x",
		Characters: []*model.Character{{ID: 40, Title: "A"}, {ID: 7, Title: "B"}},
		Chapters:   []*model.Chapter{{ID: 9, Scenes: []int{30, 20}}},
		Scenes: []*model.Scene{
			{ID: 20, Title: "second", Characters: []int{7, 40}},
			{ID: 30, Title: "first"},
		},
	}
	res := write(t, p)

	read, err := NewReader().Read(string(res.Data))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, read.Project.Chapters[0].Scenes)
	assert.Equal(t, "second", read.Project.Scenes[0].Title)
	assert.Equal(t, []int{2, 1}, read.Project.Scenes[0].Characters)
	assert.Equal(t, "B", read.Project.Characters[1].Title)
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name    string
		project *model.Project
		element string
	}{
		{"nil project", nil, ""},
		{"missing title", &model.Project{Title: " "}, "PROJECT/Title"},
		{
			"orphan scene",
			&model.Project{Title: "x", Scenes: []*model.Scene{{ID: 1}}},
			"scene 1",
		},
		{
			"duplicate scene ID",
			&model.Project{
				Title:    "x",
				Chapters: []*model.Chapter{{ID: 1, Scenes: []int{1}}},
				Scenes:   []*model.Scene{{ID: 1}, {ID: 1}},
			},
			"scene 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWriter().Write(tt.project)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ywerrors.ErrMalformedProject))
			var mpe *ywerrors.MalformedProjectError
			require.True(t, errors.As(err, &mpe))
			assert.Equal(t, tt.element, mpe.Element)
		})
	}
}

func TestWriteDropsDanglingReferences(t *testing.T) {
	p := testutil.NewSimpleProject()
	p.Characters = []*model.Character{{ID: 1, Title: "A"}}
	p.Scenes[0].Characters = []int{99, 1}
	p.Scenes[0].Locations = []int{5}
	p.Chapters[0].Scenes = append(p.Chapters[0].Scenes, 42)
	p.PlotLines = []*model.PlotLine{{
		ID: 1, Title: "P", ShortName: "P", Scenes: []int{77},
		Points: []*model.PlotPoint{{ID: 1, Title: "pp", Scene: 88}},
	}}

	res := write(t, p)
	assert.Len(t, res.Issues.OfKind(issues.KindDanglingReference), 5, "issues: %v", res.Issues)

	read, err := NewReader().Read(string(res.Data))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, read.Project.Scenes[0].Characters)
	assert.Empty(t, read.Project.Scenes[0].Locations)
	assert.Equal(t, []int{1}, read.Project.Chapters[0].Scenes)
	assert.Zero(t, read.Project.PlotLines[0].Points[0].Scene)
	assert.Empty(t, read.Issues)
}

func TestWriteFieldFidelity(t *testing.T) {
	p := testutil.NewSimpleProject()
	p.Fields.Set("Field_RenumberParts", model.BoolValue(false))
	p.Fields.Set("Field_IsTrash", model.StringValue("yes"))
	p.Fields.Set("bad name", model.StringValue("x"))
	p.Fields.Set("Field_SceneType", model.StringValue("1"))
	p.Fields.Set("Field_Custom", model.StringValue("a ]]> b"))
	p.Chapters[0].Fields.Set("Field_NoNumber", model.BoolValue(true))

	res := write(t, p)
	out := string(res.Data)
	assert.Contains(t, out, "<Field_RenumberParts>0</Field_RenumberParts>")
	assert.Contains(t, out, "<Field_NoNumber>1</Field_NoNumber>")
	assert.NotContains(t, out, "Field_IsTrash")
	assert.NotContains(t, out, "bad name")
	assert.Len(t, res.Issues.OfKind(issues.KindUnsupportedField), 3)

	read, err := NewReader().Read(out)
	require.NoError(t, err)
	v, ok := read.Project.Fields.Get("Field_RenumberParts")
	require.True(t, ok)
	assert.Equal(t, model.BoolValue(false), v)
	v, _ = read.Project.Fields.Get("Field_Custom")
	assert.Equal(t, model.StringValue("a ]]> b"), v)
	assert.True(t, read.Project.Chapters[0].Fields.Flag("Field_NoNumber"))
}

func TestWriteSceneTypesAndTimes(t *testing.T) {
	p := &model.Project{
		Title:    "x",
		Chapters: []*model.Chapter{{ID: 1, Scenes: []int{1, 2, 3, 4}}},
		Scenes: []*model.Scene{
			{ID: 1, Type: model.SceneStage, Tags: []string{"act"}, Date: "2024-02-29"},
			{ID: 2, Type: model.SceneUnused, Time: "07:30"},
			{ID: 3, Type: model.SceneTodo, Kind: model.KindCustom, Date: "not a date"},
			{ID: 4, Status: 9, AppendToPrev: true},
		},
	}
	res := write(t, p)
	assert.Len(t, res.Issues.OfKind(issues.KindDefaultedField), 2)

	read, err := NewReader().Read(string(res.Data))
	require.NoError(t, err)
	s := read.Project.Scenes

	assert.Equal(t, model.SceneStage, s[0].Type)
	assert.Equal(t, []string{"act"}, s[0].Tags)
	assert.Equal(t, "2024-02-29", s[0].Date)
	assert.Equal(t, "00:00:00", s[0].Time)
	assert.Equal(t, model.SceneUnused, s[1].Type)
	assert.Equal(t, "07:30:00", s[1].Time)
	assert.Equal(t, model.SceneTodo, s[2].Type)
	assert.Equal(t, model.KindCustom, s[2].Kind)
	assert.Empty(t, s[2].Date)
	assert.Equal(t, model.MinStatus, s[3].Status)
	assert.True(t, s[3].AppendToPrev)
}

func TestWritePlotLineShortNames(t *testing.T) {
	p := testutil.NewSimpleProject()
	p.PlotLines = []*model.PlotLine{
		{ID: 1, Title: "A", ShortName: "A", Scenes: []int{1}},
		{ID: 2, Title: "B", ShortName: "A", Scenes: []int{1}},
		{ID: 3, Title: "C"},
	}
	res := write(t, p)
	assert.Len(t, res.Issues.OfKind(issues.KindDefaultedField), 2)

	read, err := NewReader().Read(string(res.Data))
	require.NoError(t, err)
	require.Len(t, read.Project.PlotLines, 3)
	assert.Equal(t, "A", read.Project.PlotLines[0].ShortName)
	assert.Equal(t, "PL3", read.Project.PlotLines[1].ShortName)
	assert.Equal(t, "PL4", read.Project.PlotLines[2].ShortName)
	assert.Equal(t, []int{1}, read.Project.PlotLines[1].Scenes)
}

func TestWriteWordCountLog(t *testing.T) {
	p := testutil.NewSimpleProject()
	p.WordCountLog = []model.WordCount{
		{Date: "2024-01-01", Count: 10, TotalCount: 12},
		{Date: "2024-01-02", Count: 10, TotalCount: 12},
		{Date: "2024-01-03", Count: 11, TotalCount: 13},
	}

	res := write(t, p)
	assert.Equal(t, 3, strings.Count(string(res.Data), "<WC>"))

	p.Fields.Set("Field_SaveWordCount", model.BoolValue(true))
	res = write(t, p)
	assert.Equal(t, 2, strings.Count(string(res.Data), "<WC>"))
	assert.NotContains(t, string(res.Data), "2024-01-02")
}

func TestWriteIndent(t *testing.T) {
	w := NewWriter()
	w.Indent = "  "
	res, err := w.Write(testutil.NewSimpleProject())
	require.NoError(t, err)
	assert.Contains(t, string(res.Data), "<YWRITER7>\n  <PROJECT>\n    <Ver>7</Ver>")
}

func TestWriteStripsIllegalCharacters(t *testing.T) {
	p := testutil.NewSimpleProject()
	p.Title = "Bad\x01Title"
	p.Scenes[0].Content = model.PlainText("a\x0bb")
	res := write(t, p)

	read, err := NewReader().Read(string(res.Data))
	require.NoError(t, err)
	assert.Equal(t, "BadTitle", read.Project.Title)
	assert.Equal(t, "ab", read.Project.Scenes[0].Content.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "novel.yw7")
	p := testutil.NewSimpleProject()

	t.Run("creates the file", func(t *testing.T) {
		_, err := NewWriter().WriteFile(p, path)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Test Novel")
		assert.NoFileExists(t, path+BackupSuffix)
	})

	t.Run("keeps a backup of the replaced file", func(t *testing.T) {
		p.Title = "Second Draft"
		_, err := NewWriter().WriteFile(p, path)
		require.NoError(t, err)
		backup, err := os.ReadFile(path + BackupSuffix)
		require.NoError(t, err)
		assert.Contains(t, string(backup), "Test Novel")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Second Draft")
	})

	t.Run("refuses locked projects", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path+LockSuffix, nil, 0o600))
		defer os.Remove(path + LockSuffix)

		_, err := NewWriter().WriteFile(p, path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ywerrors.ErrLocked))
		assert.True(t, errors.Is(err, ywerrors.ErrWriteIO))

		w := NewWriter()
		w.LockCheck = false
		_, err = w.WriteFile(p, path)
		assert.NoError(t, err)
	})

	t.Run("reports I/O failures", func(t *testing.T) {
		_, err := NewWriter().WriteFile(p, filepath.Join(dir, "missing", "novel.yw7"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ywerrors.ErrWriteIO))
		var wie *ywerrors.WriteIOError
		require.True(t, errors.As(err, &wie))
		assert.Equal(t, "write", wie.Op)
		assert.False(t, wie.IsLocked)
	})
}

func TestWriteWarnsOnLiteralShortcodes(t *testing.T) {
	p := testutil.NewSimpleProject()
	p.Scenes[0].Content = model.Text{Paragraphs: []model.Paragraph{
		{Runs: []model.Run{{Text: "> Type [b] for bold, /* for notes."}}},
	}}

	res := write(t, p)
	found := res.Issues.OfKind(issues.KindUnsupportedMarkup)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"> ", "[b]", "/*"}, found[0].Value)
	assert.Equal(t, "scene 1", found[0].Entity)

	read, err := NewReader().Read(string(res.Data))
	require.NoError(t, err)
	assert.True(t, read.Project.Scenes[0].Content.Paragraphs[0].Quotation, "the literal prefix comes back as a quotation")
}
