// Package adapter provides the TCP/TLS listener shared by protocol servers.
package adapter

import "context"

// Adapter is a protocol server managed by the store server's lifecycle.
//
// Lifecycle:
//  1. Creation: the adapter is created with its configuration and the
//     collaborators its sessions need
//  2. Startup: Serve() listens and blocks until shutdown
//  3. Shutdown: Stop() closes the listener and waits for live sessions
//
// Stop may be called concurrently with Serve() and more than once.
type Adapter interface {
	// Serve starts the protocol server and blocks until the context is
	// cancelled or Stop is called. It returns nil on shutdown and an error
	// if the listener cannot be created.
	Serve(ctx context.Context) error

	// Stop closes the listener and waits for live sessions up to the
	// configured shutdown timeout or until ctx is done.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging.
	Protocol() string

	// Port returns the configured TCP port.
	Port() int
}
