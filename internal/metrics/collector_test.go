package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestCollector_AverageAndErrors(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)}
	c := NewCollector().WithClock(clock.Now)

	c.Observe(100*time.Millisecond, 200)
	c.Observe(300*time.Millisecond, 500)
	c.Observe(200*time.Millisecond, 404)

	snap := c.Snapshot()
	assert.Equal(t, 200.0, snap.AverageResponseMs)
	assert.Equal(t, int64(1), snap.Errors24h)
	assert.Equal(t, int64(3), snap.Requests24h)
}

func TestCollector_Windows(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)}
	c := NewCollector().WithClock(clock.Now)

	c.Observe(time.Second, 503)
	clock.Advance(20 * time.Minute)
	c.Observe(10*time.Millisecond, 200)

	snap := c.Snapshot()
	// latency only covers the last 15 minutes, errors the last 24 hours
	assert.Equal(t, 10.0, snap.AverageResponseMs)
	assert.Equal(t, int64(1), snap.Errors24h)

	clock.Advance(24 * time.Hour)
	snap = c.Snapshot()
	assert.Equal(t, int64(0), snap.Errors24h)
	assert.Equal(t, int64(0), snap.Requests24h)
	assert.Equal(t, 0.0, snap.AverageResponseMs)
}

func TestCollector_InFlight(t *testing.T) {
	c := NewCollector()

	done1 := c.Begin()
	done2 := c.Begin()
	assert.Equal(t, int64(2), c.Snapshot().InFlight)

	done1(200)
	done2(500)
	snap := c.Snapshot()
	assert.Equal(t, int64(0), snap.InFlight)
	assert.Equal(t, int64(1), snap.Errors24h)
}
