package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTable(t *testing.T) {
	table := NewTableData("ID", "Name")
	table.AddRow("1", "Enigma")
	table.AddRow("2", "Caesar")
	require.Len(t, table.Rows(), 2)

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Enigma")
	assert.Contains(t, out, "Caesar")
}

func TestPrintDetails(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintDetails(&buf, [][2]string{{"Username", "alice"}, {"Admin", "no"}}))
	assert.Contains(t, buf.String(), "Username")
	assert.Contains(t, buf.String(), "alice")
}
