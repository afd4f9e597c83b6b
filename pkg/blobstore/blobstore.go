// Package blobstore stores the files behind sources and resource data:
// uploaded source zips, built assembly zips and resource data files.
//
// Uploads are first written to a local temporary file and then handed to
// Commit, which replaces the canonical object in one step. A reader never
// sees a partially written blob.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Canonical folders.
const (
	SourceFolder       = "source"
	AssemblyFolder     = "assemblies"
	ResourceDataFolder = "resourcedata"
)

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")

	// ErrInvalidKey indicates a key that escapes the store root or is empty.
	ErrInvalidKey = errors.New("invalid blob key")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("blob store closed")
)

// Store is a flat key/value store of immutable files.
//
// Thread safety: implementations must be safe for concurrent use. Commits
// of the same key are last-writer-wins.
type Store interface {
	// TempDir returns the directory in which uploads stage their temporary
	// files before Commit.
	TempDir() string

	// Commit atomically replaces the blob at key with the contents of the
	// file at tempPath. The temporary file is consumed or left for the
	// caller to remove; callers always remove it afterwards.
	Commit(ctx context.Context, key, tempPath string) error

	// Open returns a reader for the blob at key and its size.
	// Returns ErrNotFound if the blob does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Stat returns the size of the blob at key.
	// Returns ErrNotFound if the blob does not exist.
	Stat(ctx context.Context, key string) (int64, error)

	// Delete removes the blob at key. Deleting a missing blob is not an
	// error.
	Delete(ctx context.Context, key string) error

	// HealthCheck verifies the backend is reachable and writable.
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// SourceKey is the key of the uploaded source zip of a plugin version.
func SourceKey(pluginID, version int32) string {
	return fmt.Sprintf("%s/Source-%d-%d.zip", SourceFolder, pluginID, version)
}

// AssemblyKey is the key of the built assembly zip of a plugin version.
func AssemblyKey(pluginID, version int32) string {
	return fmt.Sprintf("%s/Assembly-%d-%d.zip", AssemblyFolder, pluginID, version)
}

// ResourceDataKey is the key of a resource data file version.
func ResourceDataKey(resourceID, version int32) string {
	return fmt.Sprintf("%s/ResourceData-%d-%d.bin", ResourceDataFolder, resourceID, version)
}

// CleanKey validates key and returns its canonical slash-separated form.
// Keys must be relative and must not climb out of the store root.
func CleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	key = strings.ReplaceAll(key, "\\", "/")
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}
