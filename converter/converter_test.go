package converter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/yw7tools/host"
	"github.com/erraggy/yw7tools/host/memhost"
	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/internal/testutil"
	"github.com/erraggy/yw7tools/mapper"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/sanitizer"
	"github.com/erraggy/yw7tools/yw7"
	"github.com/erraggy/yw7tools/ywerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const minimal = `<?xml version="1.0" encoding="utf-8"?>
<YWRITER7><PROJECT><Title>Caf` + "é" + `</Title></PROJECT></YWRITER7>`

func copySample(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(testutil.SampleYW7Path)
	require.NoError(t, err)
	return testutil.WriteTempFile(t, "sample.yw7", data)
}

func TestImport(t *testing.T) {
	res, err := Import(testutil.SampleYW7Path)
	require.NoError(t, err)

	assert.Equal(t, "The Lighthouse Keeper", res.Project.Title)
	assert.Equal(t, testutil.SampleYW7Path, res.SourcePath)
	assert.Equal(t, "utf-8", res.Encoding)
	assert.Equal(t, sanitizer.SourceDeclared, res.EncodingSource)
	assert.Zero(t, res.Repairs)
	assert.Nil(t, res.HostIDs)

	assert.True(t, res.Success)
	assert.True(t, res.HasWarnings())
	assert.False(t, res.HasCriticalIssues())
	assert.Equal(t, 1, res.WarningCount)
	assert.Equal(t, issues.KindUnsupportedMarkup, res.Issues[0].Kind)
}

func TestImportStrictMode(t *testing.T) {
	c := New()
	c.StrictMode = true
	res, err := c.Import(testutil.SampleYW7Path)
	require.Error(t, err)
	assert.True(t, IsStrictFailure(err))
	require.NotNil(t, res, "strict failures keep the result")
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.WarningCount)
}

func TestImportInto(t *testing.T) {
	t.Run("populates the host", func(t *testing.T) {
		dst := memhost.New()
		c := New()
		c.NewID = mapper.SequentialIDs()
		res, err := c.ImportInto(testutil.SampleYW7Path, dst)
		require.NoError(t, err)

		title, ok := dst.Field(host.NovelID, "title")
		assert.True(t, ok)
		assert.Equal(t, "The Lighthouse Keeper", title)
		assert.Equal(t, []string{"ch1", "ch2", "ch3"}, dst.List(host.KindChapter))
		assert.Len(t, dst.List(host.KindSection), 3)
		assert.Len(t, dst.List(host.KindCharacter), 2)
		assert.Equal(t, "sc1", res.HostIDs[mapper.Ref{Kind: host.KindSection, ID: 1}])
		assert.Len(t, issues.List(res.Issues).OfKind(issues.KindUnsupportedMarkup), 1)
	})

	t.Run("strict mode leaves the host untouched", func(t *testing.T) {
		dst := memhost.New()
		c := New()
		c.StrictMode = true
		res, err := c.ImportInto(testutil.SampleYW7Path, dst)
		require.Error(t, err)
		assert.True(t, IsStrictFailure(err))
		assert.NotNil(t, res)
		assert.Equal(t, 1, dst.Len())
	})

	t.Run("nil host", func(t *testing.T) {
		_, err := New().ImportInto(testutil.SampleYW7Path, nil)
		assert.True(t, errors.Is(err, ywerrors.ErrConfig))
	})

	t.Run("malformed document leaves the host untouched", func(t *testing.T) {
		path := testutil.WriteTempFile(t, "bad.yw7", []byte(`<YWRITER7></YWRITER7>`))
		dst := memhost.New()
		res, err := New().ImportInto(path, dst)
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, ywerrors.ErrMalformedProject))
		assert.Equal(t, 1, dst.Len())
	})
}

func TestImportLocked(t *testing.T) {
	path := copySample(t)
	require.NoError(t, os.WriteFile(path+yw7.LockSuffix, nil, 0o600))

	res, err := Import(path)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ywerrors.ErrLocked))

	c := New()
	c.LockCheck = false
	_, err = c.Import(path)
	assert.NoError(t, err)
}

func TestImportMissingFile(t *testing.T) {
	res, err := Import(filepath.Join(t.TempDir(), "missing.yw7"))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestImportEncodingFallback(t *testing.T) {
	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(minimal))
	require.NoError(t, err)

	res, err := New().ImportBytes(raw, "wide.yw7")
	require.NoError(t, err)
	assert.Equal(t, "Café", res.Project.Title)
	assert.Equal(t, "utf-16le", res.Encoding)
	assert.Equal(t, sanitizer.SourceFallback, res.EncodingSource)
	assert.Equal(t, 1, res.InfoCount)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, issues.KindEncoding, res.Issues[0].Kind)
	assert.Contains(t, res.Issues[0].Message, "utf-16le")

	c := New()
	c.IncludeInfo = false
	res, err = c.ImportBytes(raw, "wide.yw7")
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Zero(t, res.InfoCount)
	assert.Equal(t, "utf-16le", res.Encoding)

	c = New()
	c.FallbackEncodings = []string{"windows-1252"}
	_, err = c.ImportBytes(raw, "wide.yw7")
	assert.Error(t, err, "windows-1252 cannot decode the NUL pattern of a 16-bit stream")

	c.FallbackEncodings = []string{"no-such-encoding"}
	_, err = c.ImportBytes(raw, "wide.yw7")
	assert.True(t, errors.Is(err, ywerrors.ErrConfig))
}

func TestImportRepairs(t *testing.T) {
	doc := "<YWRITER7><PROJECT><Title>x</Title></Desc></PROJECT></YWRITER7>"
	res, err := New().ImportBytes([]byte(doc), "broken.yw7")
	require.NoError(t, err)
	assert.Equal(t, "x", res.Project.Title)
	assert.Equal(t, 1, res.Repairs)
	require.Len(t, res.Issues, 1)
	is := res.Issues[0]
	assert.Equal(t, issues.KindRepair, is.Kind)
	assert.Equal(t, SeverityInfo, is.Severity)
	assert.Equal(t, 1, is.Line)
	assert.Equal(t, "broken.yw7", is.File)
	assert.True(t, res.Success)
}

func TestImportUnrepairable(t *testing.T) {
	res, err := New().ImportBytes([]byte(`<YWRITER7 novalue><PROJECT/></YWRITER7>`), "bad.yw7")
	assert.Nil(t, res)
	require.True(t, errors.Is(err, ywerrors.ErrUnrepairable))
	var ue *ywerrors.UnrepairableDocumentError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "bad.yw7", ue.Path)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "novel.yw7")
	p := testutil.NewDetailedProject()

	res, err := Export(p, path)
	require.NoError(t, err)
	assert.Equal(t, path, res.OutputPath)
	assert.Same(t, p, res.Project)
	assert.True(t, strings.HasPrefix(string(res.Data), yw7.Header))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Data, data)
	assert.NoFileExists(t, path+yw7.BackupSuffix)

	again, err := Export(p, path)
	require.NoError(t, err)
	assert.Equal(t, res.Data, again.Data, "re-serialization is byte-identical")
	assert.FileExists(t, path+yw7.BackupSuffix)

	back, err := Import(path)
	require.NoError(t, err)
	assert.Equal(t, p.Title, back.Project.Title)
	assert.Len(t, back.Project.Scenes, len(p.Scenes))
	assert.Len(t, back.Project.Chapters, len(p.Chapters))
}

func TestExportWithoutPath(t *testing.T) {
	res, err := New().Export(testutil.NewSimpleProject(), "")
	require.NoError(t, err)
	assert.Empty(t, res.OutputPath)
	assert.Contains(t, string(res.Data), "Test Novel")
}

func TestExportStrictMode(t *testing.T) {
	p := testutil.NewSimpleProject()
	p.Fields.Set("bad name", model.StringValue("x"))
	path := filepath.Join(t.TempDir(), "novel.yw7")

	c := New()
	c.StrictMode = true
	res, err := c.Export(p, path)
	require.Error(t, err)
	assert.True(t, IsStrictFailure(err))
	require.NotNil(t, res)
	assert.Equal(t, 1, res.WarningCount)
	assert.NoFileExists(t, path, "rejected exports never touch the destination")

	res, err = New().Export(p, path)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, issues.List(res.Issues).OfKind(issues.KindUnsupportedField), 1)
	assert.FileExists(t, path)
}

func TestExportErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Export(&model.Project{}, filepath.Join(dir, "a.yw7"))
	assert.True(t, errors.Is(err, ywerrors.ErrMalformedProject))

	_, err = Export(testutil.NewSimpleProject(), filepath.Join(dir, "missing", "a.yw7"))
	assert.True(t, errors.Is(err, ywerrors.ErrWriteIO))

	path := filepath.Join(dir, "locked.yw7")
	require.NoError(t, os.WriteFile(path+yw7.LockSuffix, nil, 0o600))
	_, err = Export(testutil.NewSimpleProject(), path)
	assert.True(t, errors.Is(err, ywerrors.ErrLocked))
}

func TestExportFrom(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yw7")
	_, err := Export(testutil.NewDetailedProject(), first)
	require.NoError(t, err)

	h := memhost.New()
	_, err = ImportInto(first, h)
	require.NoError(t, err)

	second := filepath.Join(dir, "second.yw7")
	res, err := ExportFrom(h, second)
	require.NoError(t, err)
	assert.Equal(t, second, res.OutputPath)
	require.NotNil(t, res.Project)

	a, err := Import(first)
	require.NoError(t, err)
	b, err := Import(second)
	require.NoError(t, err)
	assert.Equal(t, a.Project.Title, b.Project.Title)
	require.Len(t, b.Project.Scenes, len(a.Project.Scenes))
	for i := range a.Project.Scenes {
		assert.Equal(t, a.Project.Scenes[i].Title, b.Project.Scenes[i].Title)
		assert.True(t, a.Project.Scenes[i].Content.Equal(b.Project.Scenes[i].Content))
	}
	assert.Len(t, b.Project.PlotLines, len(a.Project.PlotLines))
	assert.Len(t, b.Project.Characters, len(a.Project.Characters))
}

func TestExportFromMalformedHost(t *testing.T) {
	h := memhost.New()
	require.NoError(t, h.SetField(host.NovelID, "title", "Orphans"))
	require.NoError(t, h.Create(host.KindSection, "sc1"))

	res, err := ExportFrom(h, filepath.Join(t.TempDir(), "out.yw7"))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ywerrors.ErrMalformedProject))
}

func TestIdentifierRemapAcrossImports(t *testing.T) {
	a, b := memhost.New(), memhost.New()
	resA, err := ImportInto(testutil.SampleYW7Path, a)
	require.NoError(t, err)
	resB, err := ImportInto(testutil.SampleYW7Path, b)
	require.NoError(t, err)

	require.Equal(t, len(resA.HostIDs), len(resB.HostIDs))
	for ref, id := range resA.HostIDs {
		assert.NotEqual(t, id, resB.HostIDs[ref], "UUID-based IDs differ between imports")
		kind, ok := a.Kind(id)
		assert.True(t, ok, "%v resolves in its own host", ref)
		assert.Equal(t, ref.Kind, kind)
	}
}

const overlapping = `<?xml version="1.0" encoding="utf-8"?>
<YWRITER7>
<PROJECT><Title>Overlap</Title></PROJECT>
<SCENES><SCENE><ID>1</ID><Title>Storm</Title><SceneContent><b>A<i>B</b>C</i></SceneContent></SCENE></SCENES>
<CHAPTERS><CHAPTER><ID>1</ID><Title>One</Title><Scenes><ScID>1</ScID></Scenes></CHAPTER></CHAPTERS>
</YWRITER7>`

func issuesOfKind(list []Issue, kind issues.Kind) []Issue {
	var out []Issue
	for _, is := range list {
		if is.Kind == kind {
			out = append(out, is)
		}
	}
	return out
}

func overlapRuns() []model.Run {
	return []model.Run{
		{Text: "A", Style: model.Style{Bold: true}},
		{Text: "B", Style: model.Style{Bold: true, Italic: true}},
		{Text: "C", Style: model.Style{Italic: true}},
	}
}

func TestOverlappingMarkupRoundTrip(t *testing.T) {
	res, err := New().ImportBytes([]byte(overlapping), "overlap.yw7")
	require.NoError(t, err)
	require.True(t, res.Success)
	repairs := issuesOfKind(res.Issues, issues.KindRepair)
	require.Len(t, repairs, 1)
	assert.Contains(t, repairs[0].Message, "re-nested </b> across <i>")

	require.Len(t, res.Project.Scenes, 1)
	content := res.Project.Scenes[0].Content
	require.Len(t, content.Paragraphs, 1)
	assert.Equal(t, overlapRuns(), content.Paragraphs[0].Runs)

	exported, err := New().Export(res.Project, "")
	require.NoError(t, err)
	assert.Contains(t, string(exported.Data), "[b]A[i]B[/i][/b][i]C[/i]")

	again, err := New().ImportBytes(exported.Data, "exported.yw7")
	require.NoError(t, err)
	assert.Empty(t, again.Issues)
	require.Len(t, again.Project.Scenes, 1)
	assert.True(t, content.Equal(again.Project.Scenes[0].Content))
}

func TestExportFromRepairsHostMarkup(t *testing.T) {
	h := memhost.New()
	_, err := ImportWithOptions(WithBytes([]byte(overlapping)), WithHost(h))
	require.NoError(t, err)

	sections := h.List(host.KindSection)
	require.Len(t, sections, 1)
	require.NoError(t, h.SetField(sections[0], "content", "<p><b>A<i>B</b>C</i></p>"))

	res, err := New().ExportFrom(h, "")
	require.NoError(t, err)
	assert.Empty(t, issuesOfKind(res.Issues, issues.KindUnsupportedMarkup))
	assert.Len(t, issuesOfKind(res.Issues, issues.KindRepair), 1)
	assert.Contains(t, string(res.Data), "[b]A[i]B[/i][/b][i]C[/i]")
	assert.NotContains(t, string(res.Data), "<p>")

	back, err := New().ImportBytes(res.Data, "exported.yw7")
	require.NoError(t, err)
	require.Len(t, back.Project.Scenes, 1)
	assert.Equal(t, overlapRuns(), back.Project.Scenes[0].Content.Paragraphs[0].Runs)
}
