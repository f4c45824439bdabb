// Package cache implements an approximate-LRU compiled-expression cache,
// amortizing parse cost across repeated evaluations of the same source text.
//
// Eviction uses a monotonic recency counter per entry instead of an ordered
// list: a miss samples a small random subset of entries and evicts whichever
// has the oldest counter value. This trades exact LRU ordering for a design
// with no list-splice bookkeeping on every hit, which matters more under lock
// contention than exactness does.
package cache

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/shy-lang/shy/instr"
)

// sampleSize is how many entries are considered per eviction.
const sampleSize = 8

// Produce compiles the Expression identified by key. It is only invoked on
// a cache miss.
type Produce func(key string) (*instr.Expression, error)

type entry struct {
	id      uuid.UUID
	expr    *instr.Expression
	recency uint64
}

// Cache maps source text to compiled Expressions with a fixed capacity.
// Capacity is immutable after construction. Safe for concurrent use: all
// operations are serialized by a single mutex.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	capacity int
	clock    uint64
	logger   *slog.Logger
}

// New returns an empty Cache holding at most capacity compiled Expressions.
func New(capacity int) *Cache {
	return NewWithLogger(capacity, nil)
}

// NewWithLogger is like New, but logs compile/evict events at Debug level to
// logger. A nil logger disables logging.
func NewWithLogger(capacity int, logger *slog.Logger) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		entries:  make(map[string]*entry, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// GetOrAdd returns the Expression cached under key, updating its recency. On
// a miss, it calls produce to compile the Expression, inserts it (evicting
// an approximately-least-recently-used entry first if the cache is at
// capacity), and returns it.
func (c *Cache) GetOrAdd(key string, produce Produce) (*instr.Expression, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.clock++
		e.recency = c.clock
		expr := e.expr
		c.mu.Unlock()
		return expr, nil
	}
	c.mu.Unlock()

	expr, err := produce(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have compiled and inserted the same key while
	// this one was calling produce; prefer whichever landed first so both
	// callers observe the same *Expression instance.
	if e, ok := c.entries[key]; ok {
		c.clock++
		e.recency = c.clock
		return e.expr, nil
	}

	if len(c.entries) >= c.capacity {
		c.evictOne()
	}

	c.clock++
	id, _ := uuid.NewV4()
	c.entries[key] = &entry{id: id, expr: expr, recency: c.clock}

	if c.logger != nil {
		c.logger.Debug("compiled expression cached", "key", key, "id", id.String())
	}

	return expr, nil
}

// evictOne samples min(sampleSize, len(entries)) entries at random and
// removes whichever has the oldest recency token among them. Called with
// c.mu held.
func (c *Cache) evictOne() {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}

	n := sampleSize
	if n > len(keys) {
		n = len(keys)
	}
	rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	oldestKey := keys[0]
	oldestRecency := c.entries[oldestKey].recency
	for _, k := range keys[1:n] {
		if r := c.entries[k].recency; r < oldestRecency {
			oldestRecency = r
			oldestKey = k
		}
	}

	delete(c.entries, oldestKey)
	if c.logger != nil {
		c.logger.Debug("evicted cache entry", "key", oldestKey)
	}
}

// Size returns the number of Expressions currently cached.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the Cache's fixed capacity.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Clear removes every cached Expression.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry, c.capacity)
}
