package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPrefix(t *testing.T) {
	tests := []struct {
		kind   Kind
		prefix string
	}{
		{KindChapter, "ch"},
		{KindSection, "sc"},
		{KindCharacter, "cr"},
		{KindLocation, "lc"},
		{KindItem, "it"},
		{KindPlotLine, "pl"},
		{KindPlotPoint, "pp"},
		{KindProjectNote, "pn"},
		{KindNovel, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.prefix, tt.kind.Prefix(), string(tt.kind))
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, KindNovel.Valid())
	assert.False(t, Kind("scene").Valid())
}

func TestValidValue(t *testing.T) {
	assert.True(t, ValidValue("x"))
	assert.True(t, ValidValue(true))
	assert.True(t, ValidValue(3))
	assert.False(t, ValidValue(int64(3)))
	assert.False(t, ValidValue(1.5))
	assert.False(t, ValidValue(nil))
	assert.False(t, ValidValue([]string{"a"}))
}
