package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/cryptoolstore/internal/bytesize"
	storeadapter "github.com/marmos91/cryptoolstore/pkg/adapter/store"
	"github.com/marmos91/cryptoolstore/pkg/api"
	"github.com/marmos91/cryptoolstore/pkg/auth/lockout"
	fsblob "github.com/marmos91/cryptoolstore/pkg/blobstore/fs"
	s3blob "github.com/marmos91/cryptoolstore/pkg/blobstore/s3"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/store"
)

// EnvPrefix prefixes every environment override, e.g.
// CRYPTOOLSTORE_SERVER_PORT=15152.
const EnvPrefix = "CRYPTOOLSTORE"

// Config represents the CrypToolStore server configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (CRYPTOOLSTORE_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown of
	// the whole process
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Server configures the store protocol listener
	Server storeadapter.Config `mapstructure:"server" yaml:"server"`

	// TLS locates the server certificate
	TLS TLSConfig `mapstructure:"tls" yaml:"tls"`

	// Lockout configures failed-login lockout
	Lockout lockout.Config `mapstructure:"lockout" yaml:"lockout"`

	// Database configures the relational store (SQLite or PostgreSQL)
	Database store.Config `mapstructure:"database" yaml:"database"`

	// Blobs configures where source zips, assemblies and resource data live
	Blobs BlobsConfig `mapstructure:"blobs" yaml:"blobs"`

	// Metrics controls Prometheus collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// API configures the status HTTP server
	API api.APIConfig `mapstructure:"api" yaml:"api"`

	// Admin is the developer created on first start
	Admin AdminConfig `mapstructure:"admin" yaml:"admin"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure disables TLS towards the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Attributes are attached to every span and profile, for example
	// deployment.environment: production
	Attributes map[string]string `mapstructure:"attributes" yaml:"attributes,omitempty"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// TLSConfig locates the PEM certificate and key of the store listener.
type TLSConfig struct {
	// CertFile is the PEM certificate chain.
	// Default: $XDG_CONFIG_HOME/cryptoolstore/tls/server.crt
	CertFile string `mapstructure:"cert_file" validate:"required" yaml:"cert_file"`

	// KeyFile is the PEM private key.
	// Default: $XDG_CONFIG_HOME/cryptoolstore/tls/server.key
	KeyFile string `mapstructure:"key_file" validate:"required" yaml:"key_file"`

	// Reload swaps the certificate when the files change on disk.
	// Default: true
	Reload *bool `mapstructure:"reload" yaml:"reload,omitempty"`
}

// IsReloadEnabled reports whether certificate reload is on. Defaults to true.
func (c *TLSConfig) IsReloadEnabled() bool {
	return c.Reload == nil || *c.Reload
}

// Blob store backends.
const (
	BlobsTypeFS = "fs"
	BlobsTypeS3 = "s3"
)

// BlobsConfig selects and configures the blob store backend.
type BlobsConfig struct {
	// Type is the backend: fs or s3.
	// Default: fs
	Type string `mapstructure:"type" validate:"omitempty,oneof=fs s3" yaml:"type"`

	// FS configures the local directory backend
	FS fsblob.Config `mapstructure:"fs" yaml:"fs"`

	// S3 configures the S3 backend
	S3 s3blob.Config `mapstructure:"s3" yaml:"s3"`
}

// MetricsConfig controls Prometheus collection. The scrape endpoint is
// served by the status API at /metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AdminConfig is the admin developer created when the database has none.
type AdminConfig struct {
	// Username is the admin username
	// Default: "admin"
	Username string `mapstructure:"username" validate:"required" yaml:"username"`

	// Password is the initial admin password. When empty a random password
	// is generated and printed once on first start.
	// Override: CRYPTOOLSTORE_ADMIN_PASSWORD
	Password string `mapstructure:"password" yaml:"password,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
//
// A missing file is not an error: defaults plus environment overrides are
// returned.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration and explains how to create one when the
// file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  storesrv init\n\n"+
				"Or specify a custom config file:\n"+
				"  storesrv <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  storesrv init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to path in YAML.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold the admin password and S3 credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures environment overrides and the config file search.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, reflect.TypeOf(Config{}), "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// bindEnvs registers every leaf key of t with viper. AutomaticEnv alone
// only overrides keys that already appear in the config file.
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != reflect.TypeOf(time.Time{}) {
			bindEnvs(v, ft, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks combines the hooks for ByteSize, time.Duration and
// comma separated lists coming from the environment.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// byteSizeDecodeHook converts strings like "1MiB" or "64KiB" and plain
// numbers to bytesize.ByteSize.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" or "5m" to time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Raw integers are nanoseconds
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/cryptoolstore, falling back to
// ~/.config/cryptoolstore and finally the current directory.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cryptoolstore")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "cryptoolstore")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
