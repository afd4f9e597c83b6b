// Package fs provides a local filesystem blob store.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/marmos91/cryptoolstore/pkg/blobstore"
)

// tempDirName is the staging directory inside the root. Keeping it on the
// same filesystem lets Commit rename instead of copy.
const tempDirName = ".tmp"

// Config holds configuration for the filesystem blob store.
type Config struct {
	// Root is the directory holding the canonical folders.
	Root string `mapstructure:"root" yaml:"root"`
}

// Store keeps each blob as a file under Root.
type Store struct {
	root   string
	tmp    string
	closed bool
	mu     sync.RWMutex
}

// New creates the root and staging directories if needed.
func New(config Config) (*Store, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("blob store root is required")
	}
	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root: %w", err)
	}

	s := &Store{root: root, tmp: filepath.Join(root, tempDirName)}
	for _, dir := range []string{
		s.tmp,
		filepath.Join(root, blobstore.SourceFolder),
		filepath.Join(root, blobstore.AssemblyFolder),
		filepath.Join(root, blobstore.ResourceDataFolder),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create blob directory: %w", err)
		}
	}
	return s, nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return blobstore.ErrStoreClosed
	}
	return nil
}

// path maps a key to its file, rejecting keys that leave the root.
func (s *Store) path(key string) (string, error) {
	clean, err := blobstore.CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// TempDir returns the staging directory.
func (s *Store) TempDir() string {
	return s.tmp
}

// Commit moves tempPath over the blob at key. When tempPath lives on
// another filesystem it is first copied next to the destination so the
// final step is still a rename.
func (s *Store) Commit(_ context.Context, key, tempPath string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	if err := os.Rename(tempPath, dst); err == nil {
		return nil
	}

	sibling := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+"."+uuid.NewString())
	if err := copyFile(tempPath, sibling); err != nil {
		_ = os.Remove(sibling)
		return err
	}
	if err := os.Rename(sibling, dst); err != nil {
		_ = os.Remove(sibling)
		return fmt.Errorf("commit blob: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create blob file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy blob: %w", err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("sync blob: %w", err)
	}
	return out.Close()
}

// Open opens the blob at key for reading.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, int64, error) {
	if err := s.checkOpen(); err != nil {
		return nil, 0, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, 0, convertNotExist(err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, 0, blobstore.ErrNotFound
	}
	return f, info.Size(), nil
}

// Stat returns the size of the blob at key.
func (s *Store) Stat(_ context.Context, key string) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	p, err := s.path(key)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return 0, convertNotExist(err)
	}
	if info.IsDir() {
		return 0, blobstore.ErrNotFound
	}
	return info.Size(), nil
}

// Delete removes the blob at key.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// HealthCheck verifies the staging directory is writable.
func (s *Store) HealthCheck(_ context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.tmp, "health-*")
	if err != nil {
		return fmt.Errorf("blob store health check failed: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func convertNotExist(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return blobstore.ErrNotFound
	}
	return err
}

// Ensure Store implements blobstore.Store.
var _ blobstore.Store = (*Store)(nil)
