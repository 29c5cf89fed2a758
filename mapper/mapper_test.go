package mapper

import (
	"errors"
	"strings"
	"testing"

	"github.com/erraggy/yw7tools/host"
	"github.com/erraggy/yw7tools/host/memhost"
	"github.com/erraggy/yw7tools/internal/issues"
	"github.com/erraggy/yw7tools/internal/testutil"
	"github.com/erraggy/yw7tools/model"
	"github.com/erraggy/yw7tools/ywerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialMapper() *Mapper {
	m := New()
	m.NewID = SequentialIDs()
	return m
}

func TestRoundTrip(t *testing.T) {
	p := testutil.NewDetailedProject()
	h := memhost.New()

	res, err := ToHost(p, h)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)

	back, err := FromHost(h)
	require.NoError(t, err)
	assert.Empty(t, back.Issues)
	assert.Equal(t, p, back.Project)
}

func TestToHost(t *testing.T) {
	h := memhost.New()
	res, err := sequentialMapper().ToHost(testutil.NewDetailedProject(), h)
	require.NoError(t, err)

	field := func(id, name string) any {
		v, _ := h.Field(id, name)
		return v
	}

	t.Run("ids", func(t *testing.T) {
		assert.Equal(t, []string{"ch1", "ch2", "ch3"}, h.List(host.KindChapter))
		assert.Equal(t, []string{"sc1", "sc2", "sc3"}, h.List(host.KindSection))
		assert.Equal(t, "pp1", res.HostIDs[Ref{Kind: host.KindPlotPoint, ID: 1}])
		assert.Equal(t, "pn1", res.HostIDs[Ref{Kind: host.KindProjectNote, ID: 1}])
		assert.Len(t, res.HostIDs, 13)
	})

	t.Run("novel", func(t *testing.T) {
		assert.Equal(t, "The Lighthouse Keeper", field(host.NovelID, "title"))
		assert.Equal(t, "Jane Doe", field(host.NovelID, "authorName"))
		assert.Equal(t, 60000, field(host.NovelID, "wordTarget"))
		assert.Equal(t, true, field(host.NovelID, "renumberChapters"))
		assert.Equal(t, 2, field(host.NovelID, "workPhase"))
		assert.Equal(t, "Mystery", field(host.NovelID, "Field_Genre"))
		assert.Equal(t, "fr", field(host.NovelID, "languages"))
		assert.Equal(t, "2024-01-01 1200 1300\n2024-01-02 1500 1600", field(host.NovelID, "wordCountLog"))
	})

	t.Run("chapters and sections", func(t *testing.T) {
		assert.Equal(t, "part", field("ch1", "chLevel"))
		assert.Equal(t, "notes", field("ch3", "chType"))
		assert.Equal(t, []string{"sc1", "sc2"}, h.References("ch2", host.RelSections))
		assert.Equal(t, []string{"cr1", "cr2"}, h.References("sc1", host.RelCharacters))
		assert.Equal(t, []string{"lc1"}, h.References("sc1", host.RelLocations))
		assert.Equal(t, "action", field("sc1", "sceneKind"))
		assert.Equal(t, 3, field("sc1", "status"))
		assert.Equal(t, "<p>Bert kept watch.</p>", field("sc2", "content"))
		_, ok := h.Field("sc2", "appendToPrev")
		assert.False(t, ok, "zero values are not written")
	})

	t.Run("plot lines", func(t *testing.T) {
		assert.Equal(t, "M", field("pl1", "shortName"))
		assert.Equal(t, []string{"sc1"}, h.References("pl1", host.RelSections))
		assert.Equal(t, []string{"pp1"}, h.References("pl1", host.RelPoints))
		assert.Equal(t, []string{"sc1"}, h.References("pp1", host.RelAssoc))
	})

	t.Run("characters", func(t *testing.T) {
		assert.Equal(t, true, field("cr1", "isMajor"))
		assert.Equal(t, "keeper", field("cr1", "tags"))
		assert.Equal(t, "sea;port", field("lc1", "tags"))
	})
}

func TestIdentifierRemap(t *testing.T) {
	p := testutil.NewDetailedProject()
	h1, h2 := memhost.New(), memhost.New()
	r1, err := ToHost(p, h1)
	require.NoError(t, err)
	r2, err := ToHost(p, h2)
	require.NoError(t, err)

	seen := map[string]bool{}
	for ref, id := range r1.HostIDs {
		assert.True(t, strings.HasPrefix(id, ref.Kind.Prefix()), id)
		assert.False(t, seen[id], "duplicate host ID %s", id)
		seen[id] = true
		assert.NotEqual(t, id, r2.HostIDs[ref], "IDs are fresh per conversion")
	}
	for _, h := range []*memhost.Project{h1, h2} {
		for _, sid := range h.References(r1.HostIDs[Ref{Kind: host.KindChapter, ID: 2}], host.RelSections) {
			_, ok := h.Kind(sid)
			assert.Equal(t, h == h1, ok)
		}
	}
}

func TestToHostErrors(t *testing.T) {
	_, err := ToHost(nil, memhost.New())
	assert.True(t, errors.Is(err, ywerrors.ErrMalformedProject))

	_, err = ToHost(testutil.NewSimpleProject(), nil)
	assert.Error(t, err)

	dup := testutil.NewSimpleProject()
	dup.Scenes = append(dup.Scenes, &model.Scene{ID: 1, Title: "Again"})
	_, err = ToHost(dup, memhost.New())
	var mpe *ywerrors.MalformedProjectError
	require.True(t, errors.As(err, &mpe))
	assert.Equal(t, "scene 1", mpe.Element)

	orphan := testutil.NewSimpleProject()
	orphan.Scenes = append(orphan.Scenes, &model.Scene{ID: 2, Title: "Lost"})
	_, err = ToHost(orphan, memhost.New())
	require.True(t, errors.As(err, &mpe))
	assert.Equal(t, "scene 2", mpe.Element)

	h := memhost.New()
	require.NoError(t, h.Create(host.KindChapter, "ch1"))
	m := sequentialMapper()
	_, err = m.ToHost(testutil.NewSimpleProject(), h)
	assert.True(t, errors.Is(err, host.ErrDuplicateEntity))
}

func TestToHostDanglingReferences(t *testing.T) {
	p := testutil.NewSimpleProject()
	p.Chapters[0].Scenes = []int{1, 9}
	p.Scenes[0].Characters = []int{7}
	p.PlotLines = []*model.PlotLine{{ID: 1, Title: "Arc", Scenes: []int{8}, Points: []*model.PlotPoint{{ID: 1, Scene: 6}}}}
	p.Chapters[0].Fields.Set("title", model.StringValue("clash"))

	h := memhost.New()
	res, err := sequentialMapper().ToHost(p, h)
	require.NoError(t, err)
	assert.Len(t, res.Issues.OfKind(issues.KindDanglingReference), 4)
	assert.Len(t, res.Issues.OfKind(issues.KindUnsupportedField), 1)

	assert.Equal(t, []string{"sc1"}, h.References("ch1", host.RelSections))
	assert.Nil(t, h.References("sc1", host.RelCharacters))
	assert.Nil(t, h.References("pp1", host.RelAssoc))
	v, _ := h.Field("ch1", "title")
	assert.Equal(t, "Chapter One", v)
}

func newHost(t *testing.T) *memhost.Project {
	t.Helper()
	h := memhost.New()
	for _, e := range []struct {
		kind host.Kind
		id   string
	}{
		{host.KindChapter, "chA"},
		{host.KindSection, "scA"},
		{host.KindSection, "scB"},
		{host.KindCharacter, "crA"},
		{host.KindPlotLine, "plA"},
		{host.KindPlotPoint, "ppA"},
	} {
		require.NoError(t, h.Create(e.kind, e.id))
	}
	require.NoError(t, h.SetField(host.NovelID, "title", "Host Novel"))
	require.NoError(t, h.SetReferences("chA", host.RelSections, []string{"scA", "scB"}))
	require.NoError(t, h.SetReferences("plA", host.RelPoints, []string{"ppA"}))
	return h
}

func TestFromHost(t *testing.T) {
	h := newHost(t)
	set := func(id, name string, v any) { require.NoError(t, h.SetField(id, name, v)) }
	set(host.NovelID, "renumberChapters", "1")
	set(host.NovelID, "romanPartNumbers", "0")
	set(host.NovelID, "workPhase", "3")
	set(host.NovelID, "Field_Genre", "Saga")
	set(host.NovelID, "Field_ShowArcs", true)
	set("crA", "isMajor", "-1")
	set("scA", "content", "<p><strong>Hi</strong></p>")
	set("scA", "status", "4")
	set("scA", "sceneKind", "Reaction")
	set("scB", "scType", "stage")
	require.NoError(t, h.SetReferences("scA", host.RelCharacters, []string{"crA", "crA"}))
	require.NoError(t, h.SetReferences("ppA", host.RelAssoc, []string{"scB"}))

	res, err := FromHost(h)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)

	p := res.Project
	assert.Equal(t, "Host Novel", p.Title)
	assert.True(t, p.Fields.Flag("Field_RenumberChapters"))
	v, ok := p.Fields.Get("Field_RomanPartNumbers")
	assert.True(t, ok)
	assert.Equal(t, model.BoolValue(false), v)
	v, _ = p.Fields.Get("Field_WorkPhase")
	assert.Equal(t, model.IntValue(3), v)
	v, _ = p.Fields.Get("Field_Genre")
	assert.Equal(t, model.StringValue("Saga"), v)
	assert.True(t, p.Fields.Flag("Field_ShowArcs"))

	assert.True(t, p.Characters[0].Major)
	require.Len(t, p.Scenes, 2)
	assert.Equal(t, 4, p.Scenes[0].Status)
	assert.Equal(t, model.KindReaction, p.Scenes[0].Kind)
	assert.Equal(t, []int{1}, p.Scenes[0].Characters)
	assert.Equal(t, "Hi", p.Scenes[0].Content.String())
	assert.Equal(t, model.SceneStage, p.Scenes[1].Type)
	assert.Equal(t, 1, p.Scenes[1].Status, "missing status defaults to 1")
	assert.Equal(t, []int{1, 2}, p.Chapters[0].Scenes)
	require.Len(t, p.PlotLines, 1)
	require.Len(t, p.PlotLines[0].Points, 1)
	assert.Equal(t, 2, p.PlotLines[0].Points[0].Scene)
	assert.Equal(t, "ppA", res.HostIDs[Ref{Kind: host.KindPlotPoint, ID: 1}])
}

func TestFromHostWarnings(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.Create(host.KindPlotPoint, "ppB"))
	set := func(id, name string, v any) { require.NoError(t, h.SetField(id, name, v)) }
	set(host.NovelID, "wordCountGoal", 5)
	set(host.NovelID, "workPhase", "early")
	set(host.NovelID, "renumberParts", "yes")
	set(host.NovelID, "wordCountLog", "2024-01-01 10 20\nbroken")
	set("scA", "status", 9)
	set("scA", "scType", "draft")
	set("scA", "appendToPrev", "maybe")
	set("scA", "content", "<p>a<u>b</u></p>")
	set("scB", "content", "<p novalue>x</p>")
	set("crA", "title", true)
	require.NoError(t, h.SetReferences("scA", host.RelCharacters, []string{"crMissing"}))
	require.NoError(t, h.SetReferences("plA", host.RelPoints, []string{"ppA", "ppMissing"}))

	res, err := FromHost(h)
	require.NoError(t, err)

	assert.Len(t, res.Issues.OfKind(issues.KindUnsupportedField), 3, "wordCountGoal, workPhase, renumberParts")
	assert.Len(t, res.Issues.OfKind(issues.KindDefaultedField), 5, "log line, status, scType, appendToPrev, title")
	assert.Len(t, res.Issues.OfKind(issues.KindDanglingReference), 3, "crMissing, ppMissing, unclaimed ppB")
	assert.Len(t, res.Issues.OfKind(issues.KindUnsupportedMarkup), 2)

	p := res.Project
	assert.False(t, p.Fields.Has("Field_WorkPhase"))
	assert.Len(t, p.WordCountLog, 1)
	assert.Equal(t, 1, p.Scenes[0].Status)
	assert.Equal(t, model.SceneNormal, p.Scenes[0].Type)
	assert.Equal(t, "ab", p.Scenes[0].Content.String())
	assert.Equal(t, "<p novalue>x</p>", p.Scenes[1].Content.String(), "unrepairable markup is kept as plain text")
	assert.Equal(t, "1", p.Characters[0].Title)
}

func TestFromHostRepairsMarkup(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []model.Run
		repairs int
	}{
		{
			name:    "interleaved emphasis",
			content: "<p><b>A<i>B</b>C</i></p>",
			want: []model.Run{
				{Text: "A", Style: model.Style{Bold: true}},
				{Text: "B", Style: model.Style{Bold: true, Italic: true}},
				{Text: "C", Style: model.Style{Italic: true}},
			},
			repairs: 1,
		},
		{
			name:    "unterminated paragraph",
			content: "<p>open",
			want:    []model.Run{{Text: "open"}},
			repairs: 1,
		},
		{
			name:    "well-formed",
			content: "<p><strong>A</strong>B</p>",
			want:    []model.Run{{Text: "A", Style: model.Style{Bold: true}}, {Text: "B"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHost(t)
			require.NoError(t, h.SetField("scA", "content", tt.content))

			res, err := FromHost(h)
			require.NoError(t, err)
			assert.Empty(t, res.Issues.OfKind(issues.KindUnsupportedMarkup))
			assert.Len(t, res.Issues.OfKind(issues.KindRepair), tt.repairs)

			content := res.Project.Scenes[0].Content
			require.Len(t, content.Paragraphs, 1)
			assert.Equal(t, tt.want, content.Paragraphs[0].Runs)
		})
	}
}

func TestFromHostOrphanSection(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.SetReferences("chA", host.RelSections, []string{"scA"}))

	_, err := FromHost(h)
	var mpe *ywerrors.MalformedProjectError
	require.True(t, errors.As(err, &mpe))
	assert.Equal(t, "section scB", mpe.Element)

	_, err = FromHost(nil)
	assert.Error(t, err)
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, "renumberChapters", HostFieldName("Field_RenumberChapters"))
	assert.Equal(t, "birthDate", HostFieldName("Field_BirthDate"))
	assert.Equal(t, "Field_Genre", HostFieldName("Field_Genre"))

	tests := []struct {
		host string
		want string
		ok   bool
	}{
		{"noNumber", "Field_NoNumber", true},
		{"Field_Genre", "Field_Genre", true},
		{"Field_IsTrash", "Field_IsTrash", true},
		{"wordCountGoal", "", false},
	}
	for _, tt := range tests {
		got, ok := ModelFieldName(tt.host)
		assert.Equal(t, tt.ok, ok, tt.host)
		assert.Equal(t, tt.want, got, tt.host)
	}

	assert.True(t, IsAttributeField(host.KindSection, "content"))
	assert.False(t, IsAttributeField(host.KindChapter, "content"))
}

func TestSequentialIDs(t *testing.T) {
	next := SequentialIDs()
	assert.Equal(t, "ch1", next(host.KindChapter))
	assert.Equal(t, "ch2", next(host.KindChapter))
	assert.Equal(t, "sc1", next(host.KindSection))
	assert.True(t, strings.HasPrefix(UUIDs(host.KindItem), "it"))
	assert.Len(t, UUIDs(host.KindItem), 2+36)
}
