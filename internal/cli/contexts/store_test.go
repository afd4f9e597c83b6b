package contexts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storectl", "contexts.json")

	s, err := OpenPath(path)
	require.NoError(t, err)
	_, _, err = s.Current()
	assert.ErrorIs(t, err, ErrNoCurrentContext)

	require.NoError(t, s.Set("local", &Context{Address: "localhost:15151", Username: "alice", Insecure: true}))
	require.NoError(t, s.Set("prod", &Context{Address: "store.example.org", CAFile: "/etc/ca.pem"}))

	name, c, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "local", name, "first context becomes current")
	assert.Equal(t, "alice", c.Username)

	require.NoError(t, s.Use("prod"))
	assert.ErrorIs(t, s.Use("missing"), ErrContextNotFound)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenPath(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "prod"}, reopened.Names())
	name, c, err = reopened.Current()
	require.NoError(t, err)
	assert.Equal(t, "prod", name)
	assert.Equal(t, "/etc/ca.pem", c.CAFile)

	require.NoError(t, reopened.Delete("prod"))
	_, _, err = reopened.Current()
	assert.ErrorIs(t, err, ErrNoCurrentContext)
	_, err = reopened.Get("prod")
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contexts.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := OpenPath(path)
	assert.Error(t, err)
}

func TestOpenUsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	s, err := Open()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "storectl", "contexts.json"), s.Path())
}
