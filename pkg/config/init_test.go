package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInitConfig_WritesDefaultLocation(t *testing.T) {
	dir := isolate(t)

	path, err := InitConfig(false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cryptoolstore", "config.yaml"), path)
	assert.True(t, DefaultConfigExists())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.HasPrefix(text, "# CrypToolStore Configuration File"))
	for _, section := range []string{"logging:", "server:", "tls:", "lockout:", "database:", "blobs:", "api:", "admin:"} {
		assert.Contains(t, text, section)
	}

	var cfg Config
	require.NoError(t, yaml.Unmarshal(content, &cfg), "generated config is valid YAML")
}

func TestInitConfig_RefusesToOverwrite(t *testing.T) {
	isolate(t)

	_, err := InitConfig(false)
	require.NoError(t, err)

	_, err = InitConfig(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = InitConfig(true)
	assert.NoError(t, err)
}

func TestGeneratedConfigIsLoadable(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, InitConfigToPath(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig().Server, cfg.Server)
	assert.Empty(t, cfg.Admin.Password)
}
