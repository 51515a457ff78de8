// Package router implements the deterministic key-to-locality mapping
// that makes a sharded map behave as one logical map.
//
// owner(k) = stable_hash(k, seed=0) mod N. The hash is provided by
// internal/policy.Hasher so it stays independent of whichever hash the
// local shard (internal/shard) uses to pick a bucket within its own
// process: bucket skew on one locality must not correlate with routing
// skew across localities.
//
// Locality count N is fixed at construction and never changes, matching
// the enclosing system's non-goal of rebalancing or elastic membership.
package router

import "github.com/fernglade/dishmap/internal/policy"

// Table routes keys to owning locality IDs.
type Table[K any] struct {
	hasher policy.Hasher[K]
	n      int
}

// New builds a Table for a fleet of n localities using hasher. It panics
// if n <= 0: a router with no localities cannot route anything, and
// callers should not construct one before the fleet size is known.
func New[K any](n int, hasher policy.Hasher[K]) *Table[K] {
	if n <= 0 {
		panic("router: n must be positive")
	}
	if hasher == nil {
		hasher = policy.DefaultHasher[K]()
	}
	return &Table[K]{hasher: hasher, n: n}
}

// N returns the fixed locality count this table was built for.
func (t *Table[K]) N() int { return t.n }

// Owner returns the ID of the locality that owns k.
func (t *Table[K]) Owner(k K) int {
	return int(t.hasher.Hash(k) % uint64(t.n))
}
