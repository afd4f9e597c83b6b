package telemetry

import "time"

// Config describes the tracer provider built by Init. It is assembled by
// storesrv from the telemetry section of the server configuration.
type Config struct {
	Enabled bool

	// ServiceName and ServiceVersion identify the server in the trace
	// backend. InstanceID tells replicas apart; it defaults to the host name.
	ServiceName    string
	ServiceVersion string
	InstanceID     string

	// Endpoint is the OTLP/gRPC collector address (host:port).
	Endpoint string

	// Insecure talks plaintext gRPC to the collector.
	Insecure bool

	// SampleRate is the fraction of new traces that are recorded. Values
	// outside [0, 1] are clamped.
	SampleRate float64

	// Attributes are added to the resource of every span, for example
	// deployment.environment.
	Attributes map[string]string
}

const (
	defaultServiceName = "cryptoolstore"
	exportTimeout      = 10 * time.Second
	shutdownTimeout    = 5 * time.Second
)
