package cache

import (
	"sync"
	"time"

	"rebalance-sim/internal/analysis"
	"rebalance-sim/internal/model"
	"rebalance-sim/internal/simulation"

	"github.com/google/uuid"
)

// Run is a finished simulation kept around so its timeline, chart and report
// can be fetched after the POST that produced it.
type Run struct {
	ID        string
	Name      string
	Config    model.SimulationConfig
	Result    *simulation.Result
	Summary   analysis.Summary
	CreatedAt time.Time
}

type entry struct {
	run       *Run
	expiresAt time.Time
}

// ResultCache is an in-memory TTL cache of runs keyed by ID.
// A nil *ResultCache is valid and stores nothing.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*entry
	ttl   time.Duration
	now   func() time.Time
}

func New(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		store: make(map[string]*entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a run if present and not expired.
func (c *ResultCache) Get(id string) (*Run, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[id]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.run, true
}

// Set stores run, assigning it a new ID when it has none, and returns the ID.
func (c *ResultCache) Set(run *Run) string {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if c == nil {
		return run.ID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	c.store[run.ID] = &entry{run: run, expiresAt: now.Add(c.ttl)}
	return run.ID
}

// Purge removes expired entries and reports how many were dropped.
func (c *ResultCache) Purge() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for id, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, id)
			n++
		}
	}
	return n
}

func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
