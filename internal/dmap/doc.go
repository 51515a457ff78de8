// Package dmap implements the distributed map facade: the single type
// application code holds, whose methods route each operation either to
// the local shard directly or, for a remote key, through internal/rpc
// to the locality that owns it.
//
// # Data flow
//
//	client -> Map -> router.Owner(k)
//	              -> self?  internal/shard directly
//	              -> other? internal/rpc -> remote Map's registered handler -> its internal/shard
//
// Buffered writes take a third path: BufferedInsert appends to a
// per-destination internal/buffer.Vector instead of calling out
// immediately, and the batch ships once the destination's queue
// crosses its threshold or WaitForBufferedInsert is called.
//
// # Collective creation
//
// Create is meant to be called with the same GlobalID-seed on every
// locality in the fleet, at the same logical point in each process's
// startup — the enclosing system's "collective operation" contract. The
// resulting GlobalID is derived deterministically from that seed
// (internal/registry.NewGlobalID), so every locality ends up with the
// same ID without an extra round trip to agree on one, and Create wires
// this locality's own opcode handlers into the shared internal/rpc
// Runtime before returning.
package dmap
