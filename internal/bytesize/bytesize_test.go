package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"plain", "1024", 1024, false},
		{"bytes suffix", "512B", 512, false},
		{"kibibytes", "64Ki", 64 * KiB, false},
		{"kibibytes with B", "64KiB", 64 * KiB, false},
		{"mebibytes", "10Mi", 10 * MiB, false},
		{"gibibytes lowercase", "1gi", GiB, false},
		{"kilobytes", "1KB", KB, false},
		{"megabytes", "5M", 5 * MB, false},
		{"space before unit", "1 Mi", MiB, false},
		{"fraction", "1.5Ki", 1536, false},
		{"empty", "", 0, true},
		{"negative", "-1", 0, true},
		{"unknown unit", "3XB", 0, true},
		{"garbage", "lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringParsesBack(t *testing.T) {
	for _, v := range []ByteSize{0, 1, 1000, KiB, 64 * KiB, 10 * MiB, 3 * GiB, MiB + 1} {
		back, err := Parse(v.String())
		require.NoError(t, err, v.String())
		assert.Equal(t, v, back)
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("2Mi")))
	assert.Equal(t, 2*MiB, b)
	assert.Error(t, b.UnmarshalText([]byte("nope")))
}
