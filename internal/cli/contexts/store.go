// Package contexts persists the servers storectl talks to.
//
// A context names a server address, the developer to log in as and the
// TLS trust settings. Passwords are never stored; storectl asks for them
// or reads CRYPTOOLSTORE_PASSWORD.
package contexts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	configDirName  = "storectl"
	configFileName = "contexts.json"
)

var (
	ErrNoCurrentContext = errors.New("no current context; run 'storectl context add' first")
	ErrContextNotFound  = errors.New("context not found")
)

// Context is one saved server.
type Context struct {
	Address    string `json:"address"`
	Username   string `json:"username,omitempty"`
	CAFile     string `json:"ca_file,omitempty"`
	ServerName string `json:"server_name,omitempty"`
	Insecure   bool   `json:"insecure,omitempty"`
}

type file struct {
	Current  string              `json:"current"`
	Contexts map[string]*Context `json:"contexts"`
}

// Store reads and writes the contexts file.
type Store struct {
	path string
	data file
}

// Open loads the contexts file from the user's config directory. A
// missing file yields an empty store.
func Open() (*Store, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return OpenPath(filepath.Join(dir, configDirName, configFileName))
}

// OpenPath loads the contexts file at path.
func OpenPath(path string) (*Store, error) {
	s := &Store{path: path, data: file{Contexts: map[string]*Context{}}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.data.Contexts == nil {
		s.data.Contexts = map[string]*Context{}
	}
	return s, nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Path returns the location of the contexts file.
func (s *Store) Path() string { return s.path }

// Current returns the active context and its name.
func (s *Store) Current() (string, *Context, error) {
	if s.data.Current == "" {
		return "", nil, ErrNoCurrentContext
	}
	c, ok := s.data.Contexts[s.data.Current]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrContextNotFound, s.data.Current)
	}
	return s.data.Current, c, nil
}

// Get returns a context by name.
func (s *Store) Get(name string) (*Context, error) {
	c, ok := s.data.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, name)
	}
	return c, nil
}

// Names returns the context names in order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.data.Contexts))
	for n := range s.data.Contexts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Set creates or replaces a context. The first context becomes current.
func (s *Store) Set(name string, c *Context) error {
	s.data.Contexts[name] = c
	if s.data.Current == "" {
		s.data.Current = name
	}
	return s.save()
}

// Use makes name the current context.
func (s *Store) Use(name string) error {
	if _, ok := s.data.Contexts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrContextNotFound, name)
	}
	s.data.Current = name
	return s.save()
}

// Delete removes a context, clearing the current one if it was removed.
func (s *Store) Delete(name string) error {
	if _, ok := s.data.Contexts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrContextNotFound, name)
	}
	delete(s.data.Contexts, name)
	if s.data.Current == name {
		s.data.Current = ""
	}
	return s.save()
}
