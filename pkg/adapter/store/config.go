package store

import (
	"fmt"
	"time"

	"github.com/marmos91/cryptoolstore/internal/bytesize"
	"github.com/marmos91/cryptoolstore/internal/protocol/store/session"
	"github.com/marmos91/cryptoolstore/internal/protocol/store/transfer"
	"github.com/marmos91/cryptoolstore/pkg/adapter"
	"github.com/marmos91/cryptoolstore/pkg/protocol/wire"
)

// DefaultPort is the well-known store port.
const DefaultPort = 15151

// Default timeouts and intervals.
const (
	DefaultReadTimeout          = time.Minute
	DefaultWriteTimeout         = time.Minute
	DefaultLockoutSweepInterval = time.Minute
)

// TimeoutsConfig groups all timeout-related configuration.
type TimeoutsConfig struct {
	// Read bounds every frame read, including the wait for the next
	// request. An idle client is disconnected after this long.
	Read time.Duration `mapstructure:"read" validate:"min=0" yaml:"read"`

	// Write bounds every frame write.
	Write time.Duration `mapstructure:"write" validate:"min=0" yaml:"write"`

	// Handshake bounds the TLS handshake of a new connection.
	Handshake time.Duration `mapstructure:"handshake" validate:"min=0" yaml:"handshake"`

	// Shutdown is how long Stop waits for live sessions.
	Shutdown time.Duration `mapstructure:"shutdown" validate:"min=0" yaml:"shutdown"`

	// ShutdownPoll is how often Stop checks for live sessions.
	ShutdownPoll time.Duration `mapstructure:"shutdown_poll" validate:"min=0" yaml:"shutdown_poll"`
}

// Config holds the store server settings.
//
// Default values (applied by New if zero):
//   - Timeouts.Read, Timeouts.Write: 1m
//   - Timeouts.Handshake: 10s
//   - Timeouts.Shutdown: 5s, polled every 50ms
//   - MaxPayloadSize: 10MiB
//   - FileBufferSize: 1MiB
//   - MaxIconSize: 64KiB
//   - LockoutSweepInterval: 1m
type Config struct {
	// BindAddress is the IP address to bind to. Empty binds all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`

	// Port is the TCP port to listen on. 0 picks a free port; the
	// configuration layer defaults it to DefaultPort.
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// MaxConnections limits concurrent sessions. 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0" yaml:"max_connections"`

	// MaxPayloadSize bounds the payload of a single frame.
	MaxPayloadSize bytesize.ByteSize `mapstructure:"max_payload_size" yaml:"max_payload_size"`

	// FileBufferSize is the largest download chunk.
	FileBufferSize bytesize.ByteSize `mapstructure:"file_buffer_size" yaml:"file_buffer_size"`

	// MaxIconSize bounds plugin icons.
	MaxIconSize bytesize.ByteSize `mapstructure:"max_icon_size" yaml:"max_icon_size"`

	// MaxUploadSize bounds the declared size of an upload. 0 means
	// unbounded.
	MaxUploadSize bytesize.ByteSize `mapstructure:"max_upload_size" yaml:"max_upload_size"`

	Timeouts TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`

	// LockoutSweepInterval is how often expired lockout records are
	// dropped.
	LockoutSweepInterval time.Duration `mapstructure:"lockout_sweep_interval" validate:"min=0" yaml:"lockout_sweep_interval"`

	// MetricsLogInterval is the interval at which the live session count
	// is logged. 0 disables it.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0" yaml:"metrics_log_interval"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxPayloadSize == 0 {
		c.MaxPayloadSize = bytesize.ByteSize(wire.DefaultMaxPayloadSize)
	}
	if c.FileBufferSize == 0 {
		c.FileBufferSize = bytesize.ByteSize(transfer.DefaultFileBufferSize)
	}
	if c.MaxIconSize == 0 {
		c.MaxIconSize = bytesize.ByteSize(session.DefaultMaxIconSize)
	}
	if c.Timeouts.Read == 0 {
		c.Timeouts.Read = DefaultReadTimeout
	}
	if c.Timeouts.Write == 0 {
		c.Timeouts.Write = DefaultWriteTimeout
	}
	if c.Timeouts.Handshake == 0 {
		c.Timeouts.Handshake = adapter.DefaultHandshakeTimeout
	}
	if c.Timeouts.Shutdown == 0 {
		c.Timeouts.Shutdown = adapter.DefaultShutdownTimeout
	}
	if c.Timeouts.ShutdownPoll == 0 {
		c.Timeouts.ShutdownPoll = adapter.DefaultShutdownPoll
	}
	if c.LockoutSweepInterval == 0 {
		c.LockoutSweepInterval = DefaultLockoutSweepInterval
	}
}

// Validate checks limits that the struct tags cannot express.
func (c *Config) Validate() error {
	if c.MaxPayloadSize > bytesize.ByteSize(wire.MaxPayloadLimit) {
		return fmt.Errorf("max_payload_size %s exceeds the %s limit",
			c.MaxPayloadSize, bytesize.ByteSize(wire.MaxPayloadLimit))
	}
	// A download chunk travels inside one payload with a small envelope.
	if c.FileBufferSize+1024 > c.MaxPayloadSize {
		return fmt.Errorf("file_buffer_size %s does not fit in max_payload_size %s",
			c.FileBufferSize, c.MaxPayloadSize)
	}
	if c.MaxIconSize+64*bytesize.KiB > c.MaxPayloadSize {
		return fmt.Errorf("max_icon_size %s does not fit in max_payload_size %s",
			c.MaxIconSize, c.MaxPayloadSize)
	}
	return nil
}

func (c *Config) baseConfig() adapter.BaseConfig {
	return adapter.BaseConfig{
		BindAddress:        c.BindAddress,
		Port:               c.Port,
		MaxConnections:     c.MaxConnections,
		HandshakeTimeout:   c.Timeouts.Handshake,
		ShutdownPoll:       c.Timeouts.ShutdownPoll,
		ShutdownTimeout:    c.Timeouts.Shutdown,
		MetricsLogInterval: c.MetricsLogInterval,
	}
}

func (c *Config) sessionConfig() session.Config {
	return session.Config{
		MaxIconSize:    c.MaxIconSize.Int(),
		MaxUploadSize:  c.MaxUploadSize.Int64(),
		FileBufferSize: c.FileBufferSize.Int(),
	}
}
