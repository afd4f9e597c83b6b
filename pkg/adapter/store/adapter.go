// Package store serves the CrypToolStore protocol over TLS.
package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/internal/protocol/store/session"
	"github.com/marmos91/cryptoolstore/pkg/adapter"
	"github.com/marmos91/cryptoolstore/pkg/auth"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	cpstore "github.com/marmos91/cryptoolstore/pkg/controlplane/store"
	"github.com/marmos91/cryptoolstore/pkg/metrics"
	"github.com/marmos91/cryptoolstore/pkg/protocol"
	"github.com/marmos91/cryptoolstore/pkg/tlsutil"
)

// Deps are the collaborators of the server.
type Deps struct {
	Store cpstore.Store
	Blobs blobstore.Store
	Auth  *auth.Authenticator

	// TLS is the server TLS configuration. Nil serves in the clear, which
	// only tests should do.
	TLS *tls.Config

	// Reloader, when set, is watched for certificate changes while the
	// server runs.
	Reloader *tlsutil.Reloader

	// Metrics is optional.
	Metrics metrics.StoreMetrics
}

// Adapter is the store server. It embeds BaseAdapter for the listener,
// the live registry and shutdown, and creates one session per accepted
// connection.
//
// Background workers started with the listener and joined on Stop:
//   - lockout sweep: drops expired failed-login records
//   - tls reload: swaps the certificate when its files change
type Adapter struct {
	*adapter.BaseAdapter

	config Config
	deps   Deps
}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates a stopped server.
func New(config Config, deps Deps) (*Adapter, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store server config: %w", err)
	}
	if deps.Store == nil || deps.Blobs == nil || deps.Auth == nil {
		return nil, errors.New("store server requires a store, a blob store and an authenticator")
	}

	a := &Adapter{
		BaseAdapter: adapter.NewBaseAdapter(config.baseConfig(), "CrypToolStore", deps.TLS, deps.Metrics),
		config:      config,
		deps:        deps,
	}

	a.AddWorker("lockout-sweep", a.sweepLockouts)
	if deps.Reloader != nil {
		a.AddWorker("tls-reload", deps.Reloader.Watch)
	}

	logger.Debug("CrypToolStore server configuration",
		"max_payload_size", config.MaxPayloadSize.String(),
		"file_buffer_size", config.FileBufferSize.String(),
		"max_icon_size", config.MaxIconSize.String(),
		"read_timeout", config.Timeouts.Read,
		"write_timeout", config.Timeouts.Write)

	return a, nil
}

// Serve listens and blocks until ctx is cancelled or Stop is called.
func (a *Adapter) Serve(ctx context.Context) error {
	return a.ServeWithFactory(ctx, a)
}

// NewConnection implements adapter.ConnectionFactory.
func (a *Adapter) NewConnection(conn net.Conn) adapter.ConnectionHandler {
	pc := protocol.NewServerConn(conn, uint32(a.config.MaxPayloadSize), protocol.Timeouts{
		Read:  a.config.Timeouts.Read,
		Write: a.config.Timeouts.Write,
	})
	return &connection{
		session: session.New(pc, conn.RemoteAddr().String(), a.config.sessionConfig(), session.Deps{
			Store:   a.deps.Store,
			Blobs:   a.deps.Blobs,
			Auth:    a.deps.Auth,
			Metrics: a.deps.Metrics,
		}),
	}
}

// sweepLockouts periodically drops expired lockout records.
func (a *Adapter) sweepLockouts(ctx context.Context) error {
	gate := a.deps.Auth.Gate()
	ticker := time.NewTicker(a.config.LockoutSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := gate.Sweep(); n > 0 {
				logger.Debug("Swept expired lockout records", "removed", n, "remaining", gate.Len())
			}
			if a.deps.Metrics != nil {
				a.deps.Metrics.SetLockedAddresses(gate.Len())
			}
		}
	}
}
