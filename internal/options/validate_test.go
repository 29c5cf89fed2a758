package options

import (
	"errors"
	"testing"

	"github.com/erraggy/yw7tools/ywerrors"
	"github.com/stretchr/testify/assert"
)

func TestValidateSingleInputSource(t *testing.T) {
	tests := []struct {
		name    string
		sources []bool
		wantMsg string
	}{
		{"none", []bool{false, false}, "no input"},
		{"one", []bool{false, true}, ""},
		{"two", []bool{true, true, false}, "too many"},
		{"empty", nil, "no input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSingleInputSource("no input", "too many", tt.sources...)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ywerrors.ConfigError
			if assert.True(t, errors.As(err, &cfgErr)) {
				assert.Equal(t, "input", cfgErr.Option)
				assert.Equal(t, tt.wantMsg, cfgErr.Message)
			}
			assert.True(t, errors.Is(err, ywerrors.ErrConfig))
		})
	}
}

func TestValidateAtMostOne(t *testing.T) {
	assert.NoError(t, ValidateAtMostOne("output", "pick one"))
	assert.NoError(t, ValidateAtMostOne("output", "pick one", true, false))
	err := ValidateAtMostOne("output", "pick one", true, true)
	var cfgErr *ywerrors.ConfigError
	if assert.True(t, errors.As(err, &cfgErr)) {
		assert.Equal(t, "output", cfgErr.Option)
	}
}
