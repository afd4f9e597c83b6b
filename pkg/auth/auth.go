// Package auth verifies store logins.
//
// It composes the developer credential check with the per-address lockout
// gate:
//
//   - Authenticator: runs one login attempt end to end
//   - AuthResult: the identity a successful login grants
//   - Standard error types for refused logins
//
// Sub-packages:
//   - lockout/: brute-force throttling per source address
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/cryptoolstore/pkg/auth/lockout"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

// CredentialStore is the part of the store a login needs.
type CredentialStore interface {
	CheckDeveloperPassword(ctx context.Context, username, password string) error
	GetDeveloper(ctx context.Context, username string) (*models.Developer, error)
}

// AuthResult contains the outcome of a successful login.
type AuthResult struct {
	// Username is the normalized (lowercase) developer name.
	Username string

	// IsAdmin reports whether the developer has administrative rights.
	IsAdmin bool
}

// Authenticator checks credentials behind a lockout gate.
//
// Thread safety: safe for concurrent use.
type Authenticator struct {
	store CredentialStore
	gate  *lockout.Gate
}

// NewAuthenticator creates an Authenticator. The gate is shared by every
// connection of a server.
func NewAuthenticator(store CredentialStore, gate *lockout.Gate) *Authenticator {
	return &Authenticator{store: store, gate: gate}
}

// Gate returns the lockout gate.
func (a *Authenticator) Gate() *lockout.Gate {
	return a.gate
}

// Authenticate runs one login attempt from addr.
//
// Returns:
//   - (*AuthResult, nil) on success; the address record is cleared
//   - ErrLockedOut if addr is locked, or its remaining retries are all held
//     by concurrent attempts; credentials were not examined
//   - ErrAuthFailed if the credentials are wrong; the failure is recorded
//   - any other error if the store failed
func (a *Authenticator) Authenticate(ctx context.Context, username, password, addr string) (*AuthResult, error) {
	username = models.NormalizeUsername(username)

	if ok, fails := a.gate.Reserve(addr); !ok {
		return nil, &LockedOutError{Attempt: fails}
	}

	if err := a.store.CheckDeveloperPassword(ctx, username, password); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			return nil, &FailedError{Attempt: a.gate.Fail(addr)}
		}
		a.gate.Release(addr)
		return nil, fmt.Errorf("check password: %w", err)
	}

	dev, err := a.store.GetDeveloper(ctx, username)
	if err != nil {
		a.gate.Release(addr)
		return nil, fmt.Errorf("load developer: %w", err)
	}

	a.gate.Succeed(addr)
	return &AuthResult{Username: dev.Username, IsAdmin: dev.IsAdmin}, nil
}

// Standard authentication errors.
var (
	// ErrAuthFailed indicates the username/password pair was wrong.
	ErrAuthFailed = errors.New("auth: authentication failed")

	// ErrLockedOut indicates the source address exceeded its retries.
	ErrLockedOut = errors.New("auth: too many failed attempts")
)

// FailedError is returned for wrong credentials. Attempt is the failure
// count of the address within the current window.
type FailedError struct {
	Attempt int
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%v (attempt %d)", ErrAuthFailed, e.Attempt)
}

func (e *FailedError) Unwrap() error { return ErrAuthFailed }

// LockedOutError is returned when the address is locked.
type LockedOutError struct {
	Attempt int
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("%v (attempt %d)", ErrLockedOut, e.Attempt)
}

func (e *LockedOutError) Unwrap() error { return ErrLockedOut }
