package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/cryptoolstore/internal/bytesize"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/store"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are escapes.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

// isolate points the default config directory at a temporary directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsFillMissingValues(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, "config.yaml", `
logging:
  level: "info"

database:
  type: sqlite
  sqlite:
    path: "`+yamlSafePath(dir)+`/store.db"

server:
  max_payload_size: 4Mi
  file_buffer_size: 256KiB
  timeouts:
    read: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, 15151, cfg.Server.Port)
	assert.Equal(t, 4*bytesize.MiB, cfg.Server.MaxPayloadSize)
	assert.Equal(t, 256*bytesize.KiB, cfg.Server.FileBufferSize)
	assert.Equal(t, 64*bytesize.KiB, cfg.Server.MaxIconSize)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeouts.Read)
	assert.Equal(t, time.Minute, cfg.Server.Timeouts.Write)

	assert.Equal(t, 3, cfg.Lockout.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Lockout.Window)

	assert.Equal(t, BlobsTypeFS, cfg.Blobs.Type)
	assert.Equal(t, filepath.Join(dir, "cryptoolstore", "blobs"), cfg.Blobs.FS.Root)
	assert.Equal(t, filepath.Join(dir, "cryptoolstore", "tls", "server.crt"), cfg.TLS.CertFile)
	assert.True(t, cfg.TLS.IsReloadEnabled())

	assert.True(t, cfg.API.IsEnabled())
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "admin", cfg.Admin.Username)
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 15151, cfg.Server.Port)
	assert.Equal(t, store.DatabaseTypeSQLite, cfg.Database.Type)
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "invalid.yaml", `
logging:
  level: INFO
  invalid yaml here [[[
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValue(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "config.yaml", `
server:
  max_payload_size: 128Mi
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_payload_size")
}

func TestLoad_TOML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "config.toml", `
[logging]
level = "WARN"
format = "json"

[blobs]
type = "s3"

[blobs.s3]
bucket = "plugins"
region = "eu-central-1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, BlobsTypeS3, cfg.Blobs.Type)
	assert.Equal(t, "plugins", cfg.Blobs.S3.Bucket)
	assert.Empty(t, cfg.Blobs.FS.Root, "fs root is only defaulted for the fs backend")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("CRYPTOOLSTORE_LOGGING_LEVEL", "ERROR")
	t.Setenv("CRYPTOOLSTORE_SERVER_PORT", "16000")
	t.Setenv("CRYPTOOLSTORE_SERVER_FILE_BUFFER_SIZE", "512Ki")
	t.Setenv("CRYPTOOLSTORE_LOCKOUT_WINDOW", "10m")
	t.Setenv("CRYPTOOLSTORE_ADMIN_PASSWORD", "from-env")
	t.Setenv("CRYPTOOLSTORE_API_ENABLED", "false")

	path := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"
server:
  port: 15151
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ERROR", cfg.Logging.Level)
	assert.Equal(t, 16000, cfg.Server.Port)
	assert.Equal(t, 512*bytesize.KiB, cfg.Server.FileBufferSize)
	assert.Equal(t, 10*time.Minute, cfg.Lockout.Window)
	assert.Equal(t, "from-env", cfg.Admin.Password)
	assert.False(t, cfg.API.IsEnabled())
}

func TestLoad_EnvironmentWithoutFile(t *testing.T) {
	isolate(t)
	t.Setenv("CRYPTOOLSTORE_SERVER_MAX_CONNECTIONS", "42")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Server.MaxConnections)
}

func TestMustLoad_MissingFile(t *testing.T) {
	isolate(t)

	_, err := MustLoad("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storesrv init")

	_, err = MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	isolate(t)
	cfg := GetDefaultConfig()
	cfg.Server.FileBufferSize = 2 * bytesize.MiB
	cfg.Lockout.Window = 90 * time.Second

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file_buffer_size: 2Mi")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*bytesize.MiB, loaded.Server.FileBufferSize)
	assert.Equal(t, 90*time.Second, loaded.Lockout.Window)
	assert.Equal(t, cfg.Server.Port, loaded.Server.Port)
}

func TestGetDefaultConfig(t *testing.T) {
	isolate(t)
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15151, cfg.Server.Port)
	assert.Equal(t, 10*bytesize.MiB, cfg.Server.MaxPayloadSize)
	assert.Equal(t, bytesize.MiB, cfg.Server.FileBufferSize)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.NoError(t, Validate(cfg))
}

func TestGetConfigDir(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, filepath.Join(dir, "cryptoolstore"), GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "cryptoolstore", "config.yaml"), GetDefaultConfigPath())
	assert.False(t, DefaultConfigExists())
}
