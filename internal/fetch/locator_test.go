package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
)

func TestExtractFileID(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    string
		wantErr bool
	}{
		{
			name:    "bare identifier",
			locator: "ABCDEFGHIJKLMNOPQRST1234",
			want:    "ABCDEFGHIJKLMNOPQRST1234",
		},
		{
			name:    "bare identifier with dash and underscore",
			locator: "1aB2cD3eF4-gH5iJ_6kL7mN8",
			want:    "1aB2cD3eF4-gH5iJ_6kL7mN8",
		},
		{
			name:    "sharing URL with /d/ segment",
			locator: "https://drive.google.com/file/d/ABCDEFGHIJKLMNOPQRST1234/view?usp=sharing",
			want:    "ABCDEFGHIJKLMNOPQRST1234",
		},
		{
			name:    "download URL with id query parameter",
			locator: "https://drive.google.com/uc?export=download&id=ABCDEFGHIJKLMNOPQRST1234",
			want:    "ABCDEFGHIJKLMNOPQRST1234",
		},
		{
			name:    "surrounding whitespace",
			locator: "  ABCDEFGHIJKLMNOPQRST1234\n",
			want:    "ABCDEFGHIJKLMNOPQRST1234",
		},
		{
			name:    "not a url or id",
			locator: "not a url or id",
			wantErr: true,
		},
		{
			name:    "too short for a bare identifier",
			locator: "shortid123",
			wantErr: true,
		},
		{
			name:    "url without identifier",
			locator: "https://drive.google.com/drive/my-drive",
			wantErr: true,
		},
		{
			name:    "empty",
			locator: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFileID(tt.locator)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidLocator),
					"expected InvalidLocator, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
