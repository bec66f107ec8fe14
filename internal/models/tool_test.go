package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolOptions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ToolOptions
		wantErr bool
	}{
		{
			name: "empty string yields zero options",
			raw:  "",
			want: ToolOptions{},
		},
		{
			name: "whitespace only",
			raw:  "   ",
			want: ToolOptions{},
		},
		{
			name: "page range",
			raw:  `{"pageRange":"1-3,5"}`,
			want: ToolOptions{PageRange: "1-3,5"},
		},
		{
			name: "rotation",
			raw:  `{"pages":[1,2],"angle":90}`,
			want: ToolOptions{Pages: []int{1, 2}, Angle: 90},
		},
		{
			name: "compression",
			raw:  `{"compressionLevel":"extreme","grayscale":true}`,
			want: ToolOptions{CompressionLevel: CompressionExtreme, Grayscale: true},
		},
		{
			name:    "invalid JSON",
			raw:     `{"pageRange":`,
			wantErr: true,
		},
		{
			name:    "unknown field",
			raw:     `{"pageRnge":"1-3"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToolOptions(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveCompressionLevel(t *testing.T) {
	assert.Equal(t, CompressionMedium, ToolOptions{}.EffectiveCompressionLevel())
	assert.Equal(t, CompressionLow, ToolOptions{CompressionLevel: CompressionLow}.EffectiveCompressionLevel())
}

func TestToolIDIsKnown(t *testing.T) {
	for _, tool := range KnownTools {
		assert.True(t, tool.IsKnown(), string(tool))
	}
	assert.False(t, ToolID("watermark").IsKnown())
	assert.False(t, ToolID("").IsKnown())
}
