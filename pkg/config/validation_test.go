package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"invalid log level", func(c *Config) { c.Logging.Level = "INVALID" }, "oneof"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
		{"server port out of range", func(c *Config) { c.Server.Port = 70000 }, "max"},
		{"negative api port", func(c *Config) { c.API.Port = -1 }, "min"},
		{"missing cert", func(c *Config) { c.TLS.CertFile = "" }, "CertFile"},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "SampleRate"},
		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, "telemetry"},
		{"chunk exceeds payload", func(c *Config) {
			c.Server.MaxPayloadSize = c.Server.FileBufferSize
		}, "file_buffer_size"},
		{"unknown blob backend", func(c *Config) { c.Blobs.Type = "ftp" }, "oneof"},
		{"s3 without bucket", func(c *Config) { c.Blobs.Type = BlobsTypeS3 }, "bucket"},
		{"s3 half credentials", func(c *Config) {
			c.Blobs.Type = BlobsTypeS3
			c.Blobs.S3.Bucket = "plugins"
			c.Blobs.S3.AccessKeyID = "AKIA"
		}, "secret_access_key"},
		{"api collides with server", func(c *Config) { c.API.Port = c.Server.Port }, "api.port"},
		{"api disabled may share port", func(c *Config) {
			off := false
			c.API.Enabled = &off
			c.API.Port = c.Server.Port
		}, ""},
		{"postgres without host", func(c *Config) { c.Database.Type = "postgres" }, "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DoesNotNormalize(t *testing.T) {
	for _, level := range []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"} {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		assert.NoError(t, Validate(cfg), level)
		assert.Equal(t, level, cfg.Logging.Level)
	}

	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}
