// Package metrics keeps in-process request statistics for the analytics dashboard.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	bucketWidth   = time.Minute
	errorWindow   = 24 * time.Hour
	latencyWindow = 15 * time.Minute
	bucketCount   = int(errorWindow / bucketWidth)
)

type bucket struct {
	minute   int64 // unix minute the counters belong to
	requests int64
	errors   int64
	latency  time.Duration
}

// Snapshot is the rendimiento block of the dashboard.
type Snapshot struct {
	AverageResponseMs float64 `json:"tiempo_respuesta_promedio_ms"`
	InFlight          int64   `json:"solicitudes_en_curso"`
	Errors24h         int64   `json:"errores_ultimas_24_horas"`
	Requests24h       int64   `json:"solicitudes_ultimas_24_horas"`
}

// Collector aggregates request outcomes into per-minute buckets over a 24h ring.
type Collector struct {
	inFlight atomic.Int64

	mu      sync.Mutex
	buckets [bucketCount]bucket
	now     func() time.Time
}

func NewCollector() *Collector {
	return &Collector{now: time.Now}
}

// WithClock replaces the time source.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// Begin marks a request as in flight and returns the function that records its outcome.
func (c *Collector) Begin() func(status int) {
	c.inFlight.Add(1)
	start := c.now()
	return func(status int) {
		c.inFlight.Add(-1)
		c.Observe(c.now().Sub(start), status)
	}
}

func (c *Collector) Observe(latency time.Duration, status int) {
	minute := c.now().Unix() / 60
	c.mu.Lock()
	defer c.mu.Unlock()

	b := &c.buckets[minute%int64(bucketCount)]
	if b.minute != minute {
		*b = bucket{minute: minute}
	}
	b.requests++
	b.latency += latency
	if status >= 500 {
		b.errors++
	}
}

func (c *Collector) Snapshot() Snapshot {
	current := c.now().Unix() / 60
	latencyFrom := current - int64(latencyWindow/bucketWidth) + 1
	errorFrom := current - int64(bucketCount) + 1

	c.mu.Lock()
	defer c.mu.Unlock()

	var snap Snapshot
	var latencyTotal time.Duration
	var latencyRequests int64
	for _, b := range c.buckets {
		if b.minute < errorFrom || b.minute > current || b.requests == 0 {
			continue
		}
		snap.Requests24h += b.requests
		snap.Errors24h += b.errors
		if b.minute >= latencyFrom {
			latencyTotal += b.latency
			latencyRequests += b.requests
		}
	}

	if latencyRequests > 0 {
		ms := float64(latencyTotal) / float64(time.Millisecond) / float64(latencyRequests)
		snap.AverageResponseMs = float64(int64(ms*100+0.5)) / 100
	}
	snap.InFlight = c.inFlight.Load()
	return snap
}
