package explore

import (
	"sync"
	"sync/atomic"

	"github.com/hailam/chesscore/internal/board"
)

// Number of shards for cache locking (power of 2 for fast modulo)
const cacheShardCount = 256
const cacheShardMask = cacheShardCount - 1

// blackToMove is mixed into the key when scoring for Black.
const blackToMove uint64 = 0xA3C59AC2E3F1D7B5

// cacheEntry is one remembered evaluation.
type cacheEntry struct {
	key   uint64
	score float64
	used  bool
}

// EvalCache memoizes static evaluations by position hash and point of view.
// Entries are direct-mapped; a new result always replaces the slot's old one.
// It is safe for concurrent use.
type EvalCache struct {
	entries []cacheEntry
	shards  [cacheShardCount]sync.RWMutex
	size    uint64
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewEvalCache creates a cache of about sizeMB megabytes.
func NewEvalCache(sizeMB int) *EvalCache {
	const entrySize = 24
	n := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / entrySize)
	if n == 0 {
		n = 1
	}
	return &EvalCache{
		entries: make([]cacheEntry, n),
		size:    n,
		mask:    n - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// cacheKey combines the occupancy hash with the point of view. Has-moved
// flags are left out: they change which moves exist but not EvaluateBoard,
// and the cache only ever holds EvaluateBoard results.
func cacheKey(hash uint64, side board.Color) uint64 {
	if side == board.Black {
		return hash ^ blackToMove
	}
	return hash
}

// Probe returns the evaluation stored for the position scored for side.
func (c *EvalCache) Probe(hash uint64, side board.Color) (float64, bool) {
	c.probes.Add(1)

	key := cacheKey(hash, side)
	idx := key & c.mask
	shard := &c.shards[idx&cacheShardMask]

	shard.RLock()
	e := c.entries[idx]
	shard.RUnlock()

	if e.used && e.key == key {
		c.hits.Add(1)
		return e.score, true
	}
	return 0, false
}

// Store records the evaluation of the position scored for side.
func (c *EvalCache) Store(hash uint64, side board.Color, score float64) {
	key := cacheKey(hash, side)
	idx := key & c.mask
	shard := &c.shards[idx&cacheShardMask]

	shard.Lock()
	c.entries[idx] = cacheEntry{key: key, score: score, used: true}
	shard.Unlock()
}

// Evaluate returns b.EvaluateBoard(side), from the cache when present.
func (c *EvalCache) Evaluate(b *board.Board, side board.Color) float64 {
	if v, ok := c.Probe(b.Hash(), side); ok {
		return v
	}
	v := b.EvaluateBoard(side)
	c.Store(b.Hash(), side, v)
	return v
}

// Clear empties the cache and resets its statistics.
func (c *EvalCache) Clear() {
	for i := range c.shards {
		c.shards[i].Lock()
	}
	for i := range c.entries {
		c.entries[i] = cacheEntry{}
	}
	for i := range c.shards {
		c.shards[i].Unlock()
	}
	c.hits.Store(0)
	c.probes.Store(0)
}

// HitRate returns the cache hit rate as a percentage.
func (c *EvalCache) HitRate() float64 {
	probes := c.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the cache.
func (c *EvalCache) Size() uint64 {
	return c.size
}
