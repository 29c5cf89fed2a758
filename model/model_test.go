package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValue(t *testing.T) {
	tests := []struct {
		name    string
		value   FieldValue
		kind    FieldKind
		display string
		payload any
	}{
		{"string", StringValue("x"), FieldString, "x", "x"},
		{"bool true", BoolValue(true), FieldBool, "true", true},
		{"bool false", BoolValue(false), FieldBool, "false", false},
		{"int", IntValue(3), FieldInt, "3", 3},
		{"zero value", FieldValue{}, FieldString, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.value.Kind())
			assert.Equal(t, tt.display, tt.value.String())
			assert.Equal(t, tt.payload, tt.value.Any())
		})
	}
}

func TestFields(t *testing.T) {
	var f Fields
	f.Set("Field_A", StringValue("a"))
	f.Set("Field_B", BoolValue(true))
	f.Set("Field_C", IntValue(2))
	f.Set("Field_A", StringValue("again"))

	assert.Equal(t, []string{"Field_A", "Field_B", "Field_C"}, f.Names())
	v, ok := f.Get("Field_A")
	require.True(t, ok)
	assert.Equal(t, "again", v.Str())
	assert.True(t, f.Flag("Field_B"))
	assert.False(t, f.Flag("Field_C"))
	assert.False(t, f.Flag("Field_Missing"))

	f.Delete("Field_B")
	assert.Equal(t, []string{"Field_A", "Field_C"}, f.Names())
	assert.False(t, f.Has("Field_B"))
	f.Delete("Field_Missing")
	assert.Len(t, f, 2)
}

func TestMergeRuns(t *testing.T) {
	bold := Style{Bold: true}
	runs := []Run{
		{Text: "A", Style: bold},
		{Text: "", Style: Style{Italic: true}},
		{Text: "B", Style: bold},
		{Text: "note", Note: NoteComment, Style: bold},
		{Text: "C", Style: bold},
		{Text: "D"},
	}
	got := MergeRuns(runs)
	want := []Run{
		{Text: "AB", Style: bold},
		{Text: "note", Note: NoteComment},
		{Text: "C", Style: bold},
		{Text: "D"},
	}
	assert.Equal(t, want, got)
}

func TestTextEqual(t *testing.T) {
	a := Text{Paragraphs: []Paragraph{{Runs: []Run{{Text: "He"}, {Text: "llo"}}}}}
	b := PlainText("Hello")
	assert.True(t, a.Equal(b))

	c := Text{Paragraphs: []Paragraph{{Quotation: true, Runs: []Run{{Text: "Hello"}}}}}
	assert.False(t, a.Equal(c))

	d := Text{Paragraphs: []Paragraph{{Runs: []Run{{Text: "Hello", Style: Style{Italic: true}}}}}}
	assert.False(t, a.Equal(d))
}

func TestTextString(t *testing.T) {
	txt := Text{Paragraphs: []Paragraph{
		{Runs: []Run{{Text: "One "}, {Text: "two", Style: Style{Bold: true}}, {Text: "c", Note: NoteComment}}},
		{},
		{Runs: []Run{{Text: "Three", Style: Style{Lang: "de"}}}},
	}}
	assert.Equal(t, "One two\n\nThree", txt.String())
	assert.Equal(t, []string{"de"}, txt.Languages())
	assert.True(t, Text{}.IsEmpty())
	assert.True(t, PlainText("").IsEmpty())
	assert.Len(t, PlainText("a\n\nb").Paragraphs, 3)
}

func TestIndex(t *testing.T) {
	p := &Project{
		Chapters:  []*Chapter{{ID: 1, Scenes: []int{2, 1}}, {ID: 2, Scenes: []int{3}}},
		Scenes:    []*Scene{{ID: 1}, {ID: 2}, {ID: 3}},
		PlotLines: []*PlotLine{{ID: 3, Points: []*PlotPoint{{ID: 4}, {ID: 5, Scene: 2}}}},
	}
	idx := NewIndex(p)
	assert.Len(t, idx.Scenes, 3)
	assert.Len(t, idx.PlotPoints, 2)
	assert.Equal(t, 2, p.PlotPointCount())
	assert.Equal(t, 1, p.ChapterOf(1))
	assert.Equal(t, 2, p.ChapterOf(3))
	assert.Equal(t, 0, p.ChapterOf(9))
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "part", LevelPart.String())
	assert.Equal(t, "chapter", LevelChapter.String())
	assert.Equal(t, "todo", ChapterTodo.String())
	assert.Equal(t, "unknown", ChapterType(9).String())
	assert.Equal(t, "stage", SceneStage.String())
	assert.Equal(t, "unknown", SceneType(-1).String())
	assert.Equal(t, "footnote", NoteFootnote.String())
	assert.Equal(t, "reaction", KindReaction.String())
	assert.Equal(t, "unknown", SceneKind(7).String())

	s := &Scene{Characters: []int{4, 2}}
	assert.Equal(t, 4, s.Viewpoint())
	assert.Equal(t, 0, (&Scene{}).Viewpoint())
}
