package lockout

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newGate() (*Gate, *fakeClock) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(Config{}, WithClock(clk)), clk
}

func TestDefaults(t *testing.T) {
	g := New(Config{})
	assert.Equal(t, 3, g.Config().MaxRetries)
	assert.Equal(t, 5*time.Minute, g.Config().Window)
}

func TestLockoutAfterThreeFailures(t *testing.T) {
	g, _ := newGate()
	addr := "10.0.0.1:4242"

	for i := 1; i <= 3; i++ {
		ok, _ := g.Check(addr)
		require.True(t, ok, "attempt %d must be evaluated", i)
		assert.Equal(t, i, g.Fail(addr))
	}

	ok, fails := g.Check(addr)
	assert.False(t, ok)
	assert.Equal(t, 4, fails)
}

func TestPortIsIgnored(t *testing.T) {
	g, _ := newGate()
	for i := 0; i < 3; i++ {
		g.Fail(fmt.Sprintf("10.0.0.1:%d", 5000+i))
	}
	ok, _ := g.Check("10.0.0.1:6000")
	assert.False(t, ok)

	ok, _ = g.Check("10.0.0.2:6000")
	assert.True(t, ok)
}

func TestWindowElapsedClearsRecord(t *testing.T) {
	g, clk := newGate()
	addr := "192.168.1.5:1000"
	for i := 0; i < 3; i++ {
		g.Fail(addr)
	}

	clk.Advance(5*time.Minute + time.Second)
	ok, fails := g.Check(addr)
	assert.True(t, ok)
	assert.Zero(t, fails)
	assert.Zero(t, g.Len())
}

func TestRefusedAttemptRestartsWindow(t *testing.T) {
	g, clk := newGate()
	addr := "192.168.1.5:1000"
	for i := 0; i < 3; i++ {
		g.Fail(addr)
	}

	clk.Advance(4 * time.Minute)
	ok, _ := g.Check(addr)
	require.False(t, ok)

	// Five minutes after the first failures but only four after the refusal.
	clk.Advance(4 * time.Minute)
	ok, _ = g.Check(addr)
	assert.False(t, ok)
}

func TestWindowBoundaryIsExclusive(t *testing.T) {
	g, clk := newGate()
	addr := "1.2.3.4:1"
	for i := 0; i < 3; i++ {
		g.Fail(addr)
	}
	clk.Advance(5 * time.Minute)
	ok, _ := g.Check(addr)
	assert.False(t, ok, "record expires strictly after the window")
}

func TestSucceedClears(t *testing.T) {
	g, _ := newGate()
	g.Fail("1.2.3.4:1")
	g.Fail("1.2.3.4:1")
	g.Succeed("1.2.3.4:2")
	assert.Zero(t, g.Len())
}

func TestSweepAndReset(t *testing.T) {
	g, clk := newGate()
	g.Fail("1.1.1.1:1")
	clk.Advance(3 * time.Minute)
	g.Fail("2.2.2.2:1")
	clk.Advance(3 * time.Minute)

	assert.Equal(t, 1, g.Sweep())
	assert.Equal(t, 1, g.Len())

	g.Reset()
	assert.Zero(t, g.Len())
}

func TestConcurrentFailuresAreCounted(t *testing.T) {
	g, _ := newGate()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Fail("9.9.9.9:1")
		}()
	}
	wg.Wait()

	_, fails := g.Check("9.9.9.9:2")
	assert.Equal(t, 51, fails)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "10.0.0.1", Key("10.0.0.1:80"))
	assert.Equal(t, "::1", Key("[::1]:80"))
	assert.Equal(t, "pipe", Key("pipe"))
}

func TestReservationsShareRemainingRetries(t *testing.T) {
	g, _ := newGate()
	addr := "10.0.0.7:1"
	g.Fail(addr)
	g.Fail(addr)

	var allowed sync.WaitGroup
	results := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		allowed.Add(1)
		go func(port int) {
			defer allowed.Done()
			ok, _ := g.Reserve(fmt.Sprintf("10.0.0.7:%d", port))
			results <- ok
		}(2000 + i)
	}
	allowed.Wait()
	close(results)

	granted := 0
	for ok := range results {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 1, granted, "one retry was left")

	// Refusals while the retry is held do not count as failures.
	ok, fails := g.Check(addr)
	assert.True(t, ok)
	assert.Equal(t, 2, fails)

	g.Release(addr)
	ok, _ = g.Reserve(addr)
	require.True(t, ok, "a released retry can be reserved again")
	assert.Equal(t, 3, g.Fail(addr))

	ok, _ = g.Reserve(addr)
	assert.False(t, ok)
}

func TestReservationSurvivesSweep(t *testing.T) {
	g, clk := newGate()
	addr := "10.0.0.8:1"

	ok, _ := g.Reserve(addr)
	require.True(t, ok)
	clk.Advance(10 * time.Minute)
	assert.Zero(t, g.Sweep())
	assert.Equal(t, 1, g.Len())

	g.Release(addr)
	assert.Zero(t, g.Len())
}

func TestSucceedSettlesReservation(t *testing.T) {
	g, _ := newGate()
	ok, _ := g.Reserve("10.0.0.9:1")
	require.True(t, ok)
	g.Succeed("10.0.0.9:1")
	assert.Zero(t, g.Len())
}
