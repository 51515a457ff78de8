// Package shard implements the local, single-locality portion of a
// distributed map: a concurrent, bucketed hashmap with per-bucket
// locking, exposing the primitives the facade (internal/dmap) ships
// across the RPC runtime to the owning locality.
//
// # Architecture
//
// A Shard is an array of buckets fixed in size at construction. Each
// bucket owns one sync.RWMutex and one storage.Backend. A key's bucket
// index comes from a hash that is deliberately independent of
// internal/router's owner(k) hash — same key space, unrelated
// distributions — so that skew in one does not correlate with skew in
// the other, per the enclosing system's routing invariant.
//
//	Shard
//	├── bucket 0  [mu, backend]
//	├── bucket 1  [mu, backend]
//	├── ...
//	└── bucket B-1 [mu, backend]
//
// # Concurrency model
//
// Read operations (Lookup, ForEach's read-only view) take the bucket's
// read lock; Insert, Erase, and Apply take the write lock. Apply's
// callback runs with the write lock held, so it must be short and must
// not call back into the same Shard — doing so would deadlock on the
// bucket lock it is already holding.
//
// ForEachEntry and ForEachKey iterate every bucket in parallel, one
// goroutine per bucket, each under that bucket's own lock; ordering
// across or within buckets is unspecified, matching the enclosing
// system's non-goal of ordered iteration.
//
// # What moved here from the teacher's Store/Shard split
//
// The teacher kept a single whole-shard RWMutex around a Store
// interface. This package pushes locking down to bucket granularity
// (the spec's "per-bucket lock" requirement for Apply) and generalizes
// keys and values with Go generics; internal/storage still supplies the
// pluggable backend behind each bucket, the same separation of concerns
// the teacher's Store interface provided.
package shard
