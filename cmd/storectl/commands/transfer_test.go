package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransferArgs(t *testing.T) {
	kind, id, version, err := parseTransferArgs([]string{"assembly", "12", "3", "out.zip"})
	require.NoError(t, err)
	assert.Equal(t, "plugin id", kind.idName)
	assert.EqualValues(t, 12, id)
	assert.EqualValues(t, 3, version)

	kind, _, _, err = parseTransferArgs([]string{"resourcedata", "4", "2", "dict.txt"})
	require.NoError(t, err)
	assert.Equal(t, "resource id", kind.idName)

	_, _, _, err = parseTransferArgs([]string{"icon", "1", "1", "x"})
	assert.ErrorContains(t, err, "unknown file kind")

	_, _, _, err = parseTransferArgs([]string{"source", "x", "1", "x"})
	assert.ErrorContains(t, err, "plugin id")
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range GetRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"context", "developer", "plugin", "source", "resource", "resourcedata", "upload", "download", "login", "version"} {
		assert.True(t, names[want], want)
	}
}
