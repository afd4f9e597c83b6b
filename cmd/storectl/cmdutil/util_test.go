package cmdutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/cryptoolstore/internal/cli/contexts"
	"github.com/marmos91/cryptoolstore/internal/cli/output"
)

func resetFlags(t *testing.T) {
	t.Helper()
	saved := *Flags
	t.Cleanup(func() { *Flags = saved })
	*Flags = GlobalFlags{}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("plugin id", "42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"", "-1", "abc", "99999999999"} {
		_, err := ParseID("plugin id", bad)
		assert.Error(t, err, bad)
	}
}

func TestParseIDVersion(t *testing.T) {
	id, version, err := ParseIDVersion("resource id", []string{"3", "7"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, id)
	assert.EqualValues(t, 7, version)

	_, _, err = ParseIDVersion("resource id", []string{"3", "x"})
	assert.ErrorContains(t, err, "version")
}

func TestTargetUsesCurrentContextWithOverrides(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	store, err := contexts.OpenPath(filepath.Join(dir, "storectl", "contexts.json"))
	require.NoError(t, err)
	require.NoError(t, store.Set("prod", &contexts.Context{Address: "store.example.org", Username: "alice"}))

	Flags.Username = "bob"
	target, err := Target()
	require.NoError(t, err)
	assert.Equal(t, "store.example.org", target.Address)
	assert.Equal(t, "bob", target.Username)

	Flags.Context = "missing"
	_, err = Target()
	assert.ErrorIs(t, err, contexts.ErrContextNotFound)
}

func TestTargetFromFlagsOnly(t *testing.T) {
	resetFlags(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Target()
	assert.ErrorIs(t, err, contexts.ErrNoCurrentContext)

	Flags.Address = "localhost:15151"
	Flags.Insecure = true
	target, err := Target()
	require.NoError(t, err)
	assert.Equal(t, "localhost:15151", target.Address)

	opts := Options(target)
	assert.True(t, opts.TLS.InsecureSkipVerify)
}

func TestPasswordFromEnvironment(t *testing.T) {
	t.Setenv(PasswordEnv, "s3cret")
	pw, err := Password("alice")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
}

func TestPrintOutput(t *testing.T) {
	resetFlags(t)
	data := output.NewTableData("ID", "NAME")
	data.AddRow("1", "Enigma")

	var buf bytes.Buffer
	require.NoError(t, PrintOutput(&buf, nil, true, "Nothing here.", data))
	assert.Equal(t, "Nothing here.\n", buf.String())

	buf.Reset()
	require.NoError(t, PrintOutput(&buf, nil, false, "", data))
	assert.Contains(t, buf.String(), "Enigma")

	buf.Reset()
	Flags.Output = "json"
	require.NoError(t, PrintOutput(&buf, map[string]int{"id": 1}, false, "", data))
	assert.Contains(t, buf.String(), `"id": 1`)

	Flags.Output = "xml"
	assert.Error(t, PrintOutput(&buf, nil, false, "", data))
}

func TestEmptyOr(t *testing.T) {
	assert.Equal(t, "-", EmptyOr("", "-"))
	assert.Equal(t, "x", EmptyOr("x", "-"))
	assert.Equal(t, "yes", BoolToYesNo(true))
	assert.Equal(t, "no", BoolToYesNo(false))
}
