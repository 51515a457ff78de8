// Package policy defines the pluggable behaviors that parameterize a
// distributed map: how keys hash and compare, and how a conflicting
// Insert is resolved.
//
// # Overview
//
// The original template-based design parameterizes the map on a key
// comparator and an insert policy at compile time. This package models
// the same idea with small interfaces bound once at dmap.Create, so a
// caller can plug in custom hashing or conflict resolution without
// touching the facade or the local shard.
//
// # Hash and equality
//
// Hasher and KeyEqual are separate from Go's built-in comparable
// constraint because the router (internal/router) needs a hash that is
// stable across processes and independent of the local shard's own
// bucket-selection hash — two keys that collide in the router must not
// necessarily collide in a bucket, and vice versa.
//
// # Insert conflict resolution
//
// InsertPolicy decides what happens when Insert targets a key that is
// already present. The zero value behavior throughout this module is
// Overwrite, matching most hashmap intuition; Reject and a custom
// Reducer are both first-class.
package policy
