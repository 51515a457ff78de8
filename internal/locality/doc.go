// Package locality implements the locality directory: the fixed set of
// compute nodes a distributed map is partitioned across, and the
// bootstrap protocol by which each locality learns that set.
//
// # Overview
//
// A Locality is one participant in the fleet, identified by a dense
// integer ID in [0,N) and an address other localities dial to reach it.
// The Directory is the read-mostly, totally-ordered view of the fleet
// that every other component (the router, the RPC runtime, the buffers)
// consults to know who "everyone else" is.
//
// # Fixed membership
//
// Per the enclosing system's non-goals, locality count is fixed for the
// run: there is no join/leave protocol once a Directory has been
// finalized. The only membership change modeled here is the one-time
// bootstrap where localities register with a directory service and wait
// for it to publish the finalized, order-assigned set — see
// cmd/directory for the service side of that handshake.
package locality
