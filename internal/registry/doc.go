// Package registry resolves a GlobalID to the locally-registered
// distributed-map instance backing it, on this process.
//
// Every locality in a fleet ends up with its own instance of
// internal/dmap.Map for a given GlobalID: same key/value types, same
// shard geometry, but a distinct Go value per process. The registry is
// how an inbound RPC — which only carries a GlobalID and an opcode, and
// erases K/V — finds the concrete *dmap.Map to dispatch into. This
// mirrors the teacher's ShardRegistry (internal/coordinator), narrowed
// from "which node owns this shard" (a routing table, rebalanced over
// time) to "which local object does this ID name" (a fixed, one-shot
// bind at Create time, never reassigned).
package registry
