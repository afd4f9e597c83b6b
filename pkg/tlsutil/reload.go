package tlsutil

import (
	"context"
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/cryptoolstore/internal/logger"
)

// reloadDebounce coalesces the burst of events an editor or cert-manager
// produces when replacing both files.
const reloadDebounce = 250 * time.Millisecond

// Reloader holds the served key pair and swaps it when the files change.
// Handshakes already in progress keep the pair they started with.
type Reloader struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
	reloads  atomic.Int64
}

// NewReloader loads the key pair once and fails if it cannot.
func NewReloader(certFile, keyFile string) (*Reloader, error) {
	r := &Reloader{certFile: certFile, keyFile: keyFile}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reads the key pair from disk. On failure the previous pair keeps
// being served.
func (r *Reloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair %s/%s: %w", r.certFile, r.keyFile, err)
	}
	r.cert.Store(&cert)
	r.reloads.Add(1)
	return nil
}

// Reloads returns how many times a pair was loaded, including the first.
func (r *Reloader) Reloads() int64 {
	return r.reloads.Load()
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}

// Watch reloads the pair whenever either file is written, created or
// renamed into place. It watches the parent directories so that atomic
// replacements are seen. Watch blocks until ctx is cancelled.
func (r *Reloader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	files := map[string]bool{}
	for _, f := range []string{r.certFile, r.keyFile} {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		files[abs] = true
	}
	dirs := map[string]bool{}
	for f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	logger.Info("Watching TLS certificate", "cert", r.certFile, "key", r.keyFile)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if !files[abs] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := r.Reload(); err != nil {
				logger.Warn("TLS certificate reload failed, keeping previous", logger.Err(err))
				continue
			}
			logger.Info("TLS certificate reloaded", "cert", r.certFile)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("TLS certificate watcher error", logger.Err(err))
		}
	}
}
