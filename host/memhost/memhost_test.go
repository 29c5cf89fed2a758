package memhost

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/erraggy/yw7tools/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPopulated(t *testing.T) *Project {
	t.Helper()
	p := New()
	require.NoError(t, p.SetField(host.NovelID, "title", "Test Novel"))
	require.NoError(t, p.SetField(host.NovelID, "renumberChapters", true))
	require.NoError(t, p.SetField(host.NovelID, "wordTarget", 60000))
	require.NoError(t, p.Create(host.KindChapter, "ch1"))
	require.NoError(t, p.Create(host.KindSection, "sc1"))
	require.NoError(t, p.Create(host.KindSection, "sc2"))
	require.NoError(t, p.Create(host.KindCharacter, "cr1"))
	require.NoError(t, p.SetField("sc1", "title", "Opening"))
	require.NoError(t, p.SetField("sc1", "content", "<p>Hello <strong>world</strong></p>"))
	require.NoError(t, p.SetReferences("ch1", host.RelSections, []string{"sc1", "sc2"}))
	require.NoError(t, p.SetReferences("sc1", host.RelCharacters, []string{"cr1"}))
	return p
}

func TestProject(t *testing.T) {
	p := newPopulated(t)

	t.Run("list keeps creation order", func(t *testing.T) {
		assert.Equal(t, []string{"sc1", "sc2"}, p.List(host.KindSection))
		require.NoError(t, p.SetField(host.NovelID, "title", "Renamed"))
		assert.Equal(t, []string{"title", "renumberChapters", "wordTarget"}, p.FieldNames(host.NovelID), "overwrite keeps position")
		assert.Nil(t, p.List(host.KindItem))
		assert.Equal(t, 5, p.Len())
	})

	t.Run("fields", func(t *testing.T) {
		v, ok := p.Field("sc1", "title")
		assert.True(t, ok)
		assert.Equal(t, "Opening", v)
		_, ok = p.Field("sc1", "missing")
		assert.False(t, ok)
		_, ok = p.Field("nope", "title")
		assert.False(t, ok)
		assert.Equal(t, []string{"title", "renumberChapters", "wordTarget"}, p.FieldNames(host.NovelID))
	})

	t.Run("references are copies", func(t *testing.T) {
		refs := p.References("ch1", host.RelSections)
		refs[0] = "changed"
		assert.Equal(t, []string{"sc1", "sc2"}, p.References("ch1", host.RelSections))
		require.NoError(t, p.SetReferences("sc1", host.RelCharacters, nil))
		assert.Nil(t, p.References("sc1", host.RelCharacters))
	})

	t.Run("kind", func(t *testing.T) {
		k, ok := p.Kind("cr1")
		assert.True(t, ok)
		assert.Equal(t, host.KindCharacter, k)
		k, ok = p.Kind(host.NovelID)
		assert.True(t, ok)
		assert.Equal(t, host.KindNovel, k)
	})
}

func TestProjectErrors(t *testing.T) {
	p := New()
	require.NoError(t, p.Create(host.KindChapter, "ch1"))

	err := p.Create(host.KindChapter, "ch1")
	assert.True(t, errors.Is(err, host.ErrDuplicateEntity))

	assert.Error(t, p.Create(host.KindNovel, "novel2"))
	assert.Error(t, p.Create(host.KindChapter, ""))

	err = p.SetField("missing", "title", "x")
	assert.True(t, errors.Is(err, host.ErrUnknownEntity))

	err = p.SetField("ch1", "title", 1.5)
	assert.True(t, errors.Is(err, host.ErrInvalidValue))

	err = p.SetReferences("missing", host.RelSections, []string{"sc1"})
	assert.True(t, errors.Is(err, host.ErrUnknownEntity))
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.yaml", FormatYAML, false},
		{"a.YML", FormatYAML, false},
		{"dir/a.toml", FormatTOML, false},
		{"a.json", FormatJSON, false},
		{"a.novx", "", true},
		{"a", "", true},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		assert.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			p := newPopulated(t)
			path := filepath.Join(t.TempDir(), "project"+ext)
			require.NoError(t, p.Save(path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, p.Entities(), got.Entities())

			v, ok := got.Field(host.NovelID, "wordTarget")
			assert.True(t, ok)
			assert.Equal(t, 60000, v, "numbers are normalized to int")
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad syntax", `{"entities": [`},
		{"unknown kind", `{"entities": [{"id": "x1", "kind": "scene"}]}`},
		{"duplicate", `{"entities": [{"id": "ch1", "kind": "chapter"}, {"id": "ch1", "kind": "chapter"}]}`},
		{"renamed novel", `{"entities": [{"id": "book", "kind": "novel"}]}`},
		{"fractional number", `{"entities": [{"id": "novel", "kind": "novel", "fields": [{"name": "wordTarget", "value": 1.5}]}]}`},
		{"nested value", `{"entities": [{"id": "novel", "kind": "novel", "fields": [{"name": "x", "value": {"y": 1}}]}]}`},
		{"null value", `{"entities": [{"id": "novel", "kind": "novel", "fields": [{"name": "x", "value": null}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data), FormatJSON)
			assert.Error(t, err)
		})
	}

	_, err := Unmarshal(nil, Format("xml"))
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = Load("project.txt")
	assert.Error(t, err)
}
