// Package storage defines the pluggable per-bucket storage backend used
// by internal/shard, and provides the in-memory implementation this
// module ships with.
//
// # Overview
//
// Each bucket in a Shard owns one Backend instance and one lock; the
// bucket, not the backend, is responsible for synchronization (see
// internal/shard). This mirrors the teacher's Store interface — get,
// put, delete, list, stats — generalized from byte slices to arbitrary
// comparable keys and values, and stripped of its own internal locking
// now that locking lives one level up at bucket granularity.
//
// # Backends
//
// MapBackend, the only implementation here, is a plain Go map. The
// interface exists so a future backend (an on-disk store, a bounded
// cache) can slot in without internal/shard changing, the same
// motivation the teacher's Store interface had for its MemoryStore.
package storage
