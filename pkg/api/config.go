package api

import "time"

// DefaultPort is the default HTTP port of the status API.
const DefaultPort = 8080

// APIConfig configures the status HTTP server.
//
// When Enabled is false, no status server is started.
type APIConfig struct {
	// Enabled controls whether the status server is started.
	// Default: true. A pointer distinguishes "not set" from "explicitly false".
	Enabled *bool `mapstructure:"enabled" yaml:"enabled"`

	// BindAddress is the IP address to bind to. Empty binds all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`

	// Port is the HTTP port. 0 picks a free port.
	// Default (config layer): 8080
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// IsEnabled returns whether the status server is enabled.
// Defaults to true if not explicitly set.
func (c *APIConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

func (c *APIConfig) applyDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
