// Package lockout throttles password guessing per source address.
//
// After MaxRetries failed logins from one address, every further attempt
// from that address is refused without looking at the credentials, and
// each refused attempt restarts the window. An address is forgiven once
// Window has passed since its last attempt.
package lockout

import (
	"net"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

const (
	// DefaultMaxRetries is the number of failures tolerated per window.
	DefaultMaxRetries = 3

	// DefaultWindow is how long an address stays remembered after its last
	// attempt.
	DefaultWindow = 5 * time.Minute
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type defaultClock struct{}

func (defaultClock) Now() time.Time {
	return time.Now()
}

// Config configures a Gate. Zero fields take the defaults.
type Config struct {
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries" validate:"gte=0"`
	Window     time.Duration `mapstructure:"window" yaml:"window" validate:"gte=0"`
}

func (c *Config) applyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
}

// entry is the failure record of one address. Pending counts reserved
// attempts whose outcome is not known yet.
type entry struct {
	Fails   int
	Pending int
	Last    time.Time
}

func (g *Gate) expired(e entry, now time.Time) bool {
	return now.After(e.Last.Add(g.cfg.Window))
}

// Gate tracks failed logins per address. It is safe for concurrent use;
// updates for one address are atomic and never block other addresses.
type Gate struct {
	m     *xsync.MapOf[string, entry]
	cfg   Config
	clock Clock
}

// Option customizes a Gate.
type Option func(*Gate)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// New returns an empty Gate.
func New(cfg Config, opts ...Option) *Gate {
	cfg.applyDefaults()
	g := &Gate{
		m:     xsync.NewMapOf[string, entry](),
		cfg:   cfg,
		clock: defaultClock{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective configuration.
func (g *Gate) Config() Config {
	return g.cfg
}

// Check reports whether an attempt from addr may proceed without
// reserving a retry. It forgets an expired record. A refused attempt counts
// as another failure and restarts the window. The second result is the
// failure count after the call.
func (g *Gate) Check(addr string) (bool, int) {
	now := g.clock.Now()
	allowed := true
	fails := 0

	g.m.Compute(Key(addr), func(old entry, loaded bool) (entry, bool) {
		if !loaded {
			return old, true
		}
		if g.expired(old, now) {
			old = entry{Pending: old.Pending}
			return old, old.Pending == 0
		}
		if old.Fails >= g.cfg.MaxRetries {
			allowed = false
			old.Fails++
			old.Last = now
		}
		fails = old.Fails
		return old, false
	})
	return allowed, fails
}

// Reserve is Check for a login about to verify credentials. An allowed
// attempt holds one of the remaining retries until Fail, Succeed or
// Release settles it. While every remaining retry is held by attempts in
// flight, further attempts are refused without counting as failures.
func (g *Gate) Reserve(addr string) (bool, int) {
	now := g.clock.Now()
	allowed := true
	fails := 0

	g.m.Compute(Key(addr), func(old entry, loaded bool) (entry, bool) {
		if loaded && g.expired(old, now) {
			old = entry{Pending: old.Pending}
		}
		switch {
		case old.Fails >= g.cfg.MaxRetries:
			allowed = false
			old.Fails++
			old.Last = now
		case old.Fails+old.Pending >= g.cfg.MaxRetries:
			allowed = false
		default:
			old.Pending++
		}
		fails = old.Fails
		return old, old.Fails == 0 && old.Pending == 0
	})
	return allowed, fails
}

// Fail records a failed login, settling its reservation if it holds one,
// and returns the new failure count.
func (g *Gate) Fail(addr string) int {
	now := g.clock.Now()
	e, _ := g.m.Compute(Key(addr), func(old entry, _ bool) (entry, bool) {
		old.Fails++
		old.Last = now
		if old.Pending > 0 {
			old.Pending--
		}
		return old, false
	})
	return e.Fails
}

// Release gives back a reservation whose attempt ended without a verdict,
// for example because the store failed.
func (g *Gate) Release(addr string) {
	g.m.Compute(Key(addr), func(old entry, loaded bool) (entry, bool) {
		if old.Pending > 0 {
			old.Pending--
		}
		return old, !loaded || (old.Fails == 0 && old.Pending == 0)
	})
}

// Succeed forgets addr after a successful login.
func (g *Gate) Succeed(addr string) {
	g.m.Delete(Key(addr))
}

// Sweep removes every expired record and returns how many were removed.
func (g *Gate) Sweep() int {
	now := g.clock.Now()
	removed := 0
	g.m.Range(func(key string, _ entry) bool {
		g.m.Compute(key, func(old entry, loaded bool) (entry, bool) {
			if loaded && old.Pending == 0 && g.expired(old, now) {
				removed++
				return old, true
			}
			return old, !loaded
		})
		return true
	})
	return removed
}

// Reset forgets every address.
func (g *Gate) Reset() {
	g.m.Clear()
}

// Len returns the number of tracked addresses.
func (g *Gate) Len() int {
	return g.m.Size()
}

// Key normalizes a remote address to the host part; the port a client
// connects from does not matter.
func Key(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
