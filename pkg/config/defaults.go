package config

import (
	"path/filepath"
	"strings"
	"time"

	storeadapter "github.com/marmos91/cryptoolstore/pkg/adapter/store"
	"github.com/marmos91/cryptoolstore/pkg/api"
	"github.com/marmos91/cryptoolstore/pkg/auth/lockout"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/store"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
// Zero values are replaced, explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyServerDefaults(&cfg.Server)
	applyTLSDefaults(&cfg.TLS)
	applyLockoutDefaults(&cfg.Lockout)
	applyDatabaseDefaults(&cfg.Database)
	applyBlobsDefaults(&cfg.Blobs)
	applyAPIDefaults(&cfg.API)
	applyAdminDefaults(&cfg.Admin)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyServerDefaults fills the listener settings. The port defaults here
// rather than in the adapter so tests can still bind port 0.
func applyServerDefaults(cfg *storeadapter.Config) {
	if cfg.Port == 0 {
		cfg.Port = storeadapter.DefaultPort
	}
	cfg.ApplyDefaults()
}

func applyTLSDefaults(cfg *TLSConfig) {
	dir := filepath.Join(getConfigDir(), "tls")
	if cfg.CertFile == "" {
		cfg.CertFile = filepath.Join(dir, "server.crt")
	}
	if cfg.KeyFile == "" {
		cfg.KeyFile = filepath.Join(dir, "server.key")
	}
}

func applyLockoutDefaults(cfg *lockout.Config) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = lockout.DefaultMaxRetries
	}
	if cfg.Window == 0 {
		cfg.Window = lockout.DefaultWindow
	}
}

func applyDatabaseDefaults(cfg *store.Config) {
	cfg.ApplyDefaults()
}

func applyBlobsDefaults(cfg *BlobsConfig) {
	if cfg.Type == "" {
		cfg.Type = BlobsTypeFS
	}
	if cfg.Type == BlobsTypeFS && cfg.FS.Root == "" {
		cfg.FS.Root = filepath.Join(getConfigDir(), "blobs")
	}
}

// applyAPIDefaults sets status API defaults. The API is enabled unless
// explicitly turned off.
func applyAPIDefaults(cfg *api.APIConfig) {
	if cfg.Port == 0 {
		cfg.Port = api.DefaultPort
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

func applyAdminDefaults(cfg *AdminConfig) {
	if cfg.Username == "" {
		cfg.Username = "admin"
	}
}

// GetDefaultConfig returns a Config with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: store.Config{
			Type: store.DatabaseTypeSQLite,
		},
		Blobs: BlobsConfig{
			Type: BlobsTypeFS,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
