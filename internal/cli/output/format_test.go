package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatTable},
		{input: "table", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: " yml ", want: FormatYAML},
		{input: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type plugin struct {
	ID   int32  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func TestPrinterFormats(t *testing.T) {
	data := []plugin{{ID: 1, Name: "Enigma"}}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(data))
	assert.Contains(t, buf.String(), `"name": "Enigma"`)

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(data))
	assert.Contains(t, buf.String(), "- id: 1")

	// Tables fall back to JSON for values that are not TableRenderers.
	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(data))
	assert.Contains(t, buf.String(), `"id": 1`)
}

func TestPrinterMessages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)
	p.Success("created")
	p.Warning("careful")
	assert.Equal(t, "created\ncareful\n", buf.String())

	buf.Reset()
	NewPrinter(&buf, FormatTable, true).Success("ok")
	assert.Equal(t, "\033[32mok\033[0m\n", buf.String())
}
