package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the struct tags of cfg and the cross-field rules that
// tags cannot express. It never modifies cfg.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed on '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("telemetry is enabled but telemetry.endpoint is empty")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return errors.New("profiling is enabled but telemetry.profiling.endpoint is empty")
	}

	server := cfg.Server
	if err := server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if server.Port == 0 {
		return errors.New("server.port is required")
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	switch cfg.Blobs.Type {
	case BlobsTypeFS:
		if cfg.Blobs.FS.Root == "" {
			return errors.New("blobs.fs.root is required for the fs backend")
		}
	case BlobsTypeS3:
		if cfg.Blobs.S3.Bucket == "" {
			return errors.New("blobs.s3.bucket is required for the s3 backend")
		}
		if (cfg.Blobs.S3.AccessKeyID == "") != (cfg.Blobs.S3.SecretAccessKey == "") {
			return errors.New("blobs.s3.access_key_id and blobs.s3.secret_access_key must be set together")
		}
	}

	if cfg.API.IsEnabled() && cfg.API.Port == cfg.Server.Port {
		return fmt.Errorf("api.port and server.port are both %d", cfg.Server.Port)
	}
	return nil
}
