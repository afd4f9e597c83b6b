package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/cryptoolstore/pkg/auth/lockout"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// mockStore is a test CredentialStore that counts password checks.
type mockStore struct {
	devs   map[string]models.Developer
	pw     map[string]string
	checks int
	err    error
}

func newMockStore() *mockStore {
	return &mockStore{
		devs: map[string]models.Developer{
			"alice": {Username: "alice"},
			"root":  {Username: "root", IsAdmin: true},
		},
		pw: map[string]string{"alice": "secret", "root": "toor"},
	}
}

func (m *mockStore) CheckDeveloperPassword(_ context.Context, username, password string) error {
	m.checks++
	if m.err != nil {
		return m.err
	}
	if pw, ok := m.pw[username]; ok && pw == password {
		return nil
	}
	return models.ErrInvalidCredentials
}

func (m *mockStore) GetDeveloper(_ context.Context, username string) (*models.Developer, error) {
	d, ok := m.devs[username]
	if !ok {
		return nil, models.ErrDeveloperNotFound
	}
	return &d, nil
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("success lowercases and reports admin", func(t *testing.T) {
		a := NewAuthenticator(newMockStore(), lockout.New(lockout.Config{}))
		res, err := a.Authenticate(ctx, "ROOT", "toor", "1.1.1.1:5")
		require.NoError(t, err)
		assert.Equal(t, "root", res.Username)
		assert.True(t, res.IsAdmin)
	})

	t.Run("wrong password counts", func(t *testing.T) {
		a := NewAuthenticator(newMockStore(), lockout.New(lockout.Config{}))
		_, err := a.Authenticate(ctx, "alice", "nope", "1.1.1.1:5")
		assert.ErrorIs(t, err, ErrAuthFailed)

		var fe *FailedError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, 1, fe.Attempt)
	})

	t.Run("fourth attempt skips credential check", func(t *testing.T) {
		store := newMockStore()
		a := NewAuthenticator(store, lockout.New(lockout.Config{}))
		for i := 0; i < 3; i++ {
			_, err := a.Authenticate(ctx, "alice", "nope", "2.2.2.2:1")
			require.ErrorIs(t, err, ErrAuthFailed)
		}
		require.Equal(t, 3, store.checks)

		_, err := a.Authenticate(ctx, "alice", "secret", "2.2.2.2:2")
		assert.ErrorIs(t, err, ErrLockedOut)
		assert.Equal(t, 3, store.checks, "locked attempt must not reach the store")
	})

	t.Run("success clears failures", func(t *testing.T) {
		gate := lockout.New(lockout.Config{})
		a := NewAuthenticator(newMockStore(), gate)
		_, _ = a.Authenticate(ctx, "alice", "nope", "3.3.3.3:1")
		_, _ = a.Authenticate(ctx, "alice", "nope", "3.3.3.3:1")
		_, err := a.Authenticate(ctx, "alice", "secret", "3.3.3.3:1")
		require.NoError(t, err)
		assert.Zero(t, gate.Len())
	})

	t.Run("store failure is not a credential failure", func(t *testing.T) {
		store := newMockStore()
		store.err = errors.New("db down")
		gate := lockout.New(lockout.Config{})
		a := NewAuthenticator(store, gate)

		_, err := a.Authenticate(ctx, "alice", "secret", "4.4.4.4:1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrAuthFailed)
		assert.Zero(t, gate.Len())
	})
}

// slowStore holds every password check until release is closed.
type slowStore struct {
	checks  atomic.Int32
	release chan struct{}
}

func (s *slowStore) CheckDeveloperPassword(context.Context, string, string) error {
	s.checks.Add(1)
	<-s.release
	return models.ErrInvalidCredentials
}

func (s *slowStore) GetDeveloper(context.Context, string) (*models.Developer, error) {
	return nil, models.ErrDeveloperNotFound
}

func TestConcurrentAttemptsCannotExceedRetries(t *testing.T) {
	ctx := context.Background()
	gate := lockout.New(lockout.Config{})
	gate.Fail("5.5.5.5:1")

	store := &slowStore{release: make(chan struct{})}
	a := NewAuthenticator(store, gate)

	const attempts = 10
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Authenticate(ctx, "alice", "guess", "5.5.5.5:2")
			errs <- err
		}()
	}

	// Two retries remain, so two attempts reach the store and the rest are
	// refused while those are in flight.
	require.Eventually(t, func() bool { return len(errs) == attempts-2 }, 2*time.Second, 5*time.Millisecond)
	close(store.release)
	wg.Wait()
	close(errs)

	var failed, locked int
	for err := range errs {
		switch {
		case errors.Is(err, ErrAuthFailed):
			failed++
		case errors.Is(err, ErrLockedOut):
			locked++
		}
	}
	assert.Equal(t, 2, failed)
	assert.Equal(t, attempts-2, locked)
	assert.EqualValues(t, 2, store.checks.Load())

	ok, fails := gate.Check("5.5.5.5:3")
	assert.False(t, ok)
	assert.Equal(t, 4, fails)
}
