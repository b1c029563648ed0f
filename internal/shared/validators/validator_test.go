package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Resolution(t *testing.T) {
	t.Parallel()

	type window struct {
		Resolutions []string `validate:"dive,resolution"`
	}

	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{name: "all known", input: []string{"day", "hour", "minute", "second"}},
		{name: "empty list", input: nil},
		{name: "unknown name", input: []string{"hour", "week"}, wantErr: true},
		{name: "wrong case", input: []string{"Hour"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := New().Struct(window{Resolutions: tt.input})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var ve ValidationErrors
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve, 1)
			assert.Equal(t, TagResolution, ve[0].Tag())
		})
	}
}
