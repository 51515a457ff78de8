// Package applyfn implements stable-symbol registration for the pure
// functions shipped by Map.Apply and Map.ForEach* across localities.
//
// # Why symbols instead of function values
//
// A goroutine on one locality cannot hand a closure to another process:
// there is no shared address space, and even in-process a captured
// variable would defeat the "no captures" requirement that keeps Apply
// callbacks safe to run under a remote bucket lock. Instead, every
// mutator function is registered once, at package init time, under a
// short stable name. Shipping a call across localities then means
// shipping the name plus a flat, JSON-encoded argument tuple; the
// receiving locality resolves the name in its own copy of this registry,
// which — because every locality runs the same build — resolves to the
// same function.
//
// # Registration is a build-time contract
//
// There is deliberately no negotiation protocol for missing names: if a
// locality's binary does not have a name registered that another
// locality shipped, that is a deployment mismatch (different code
// running on different localities), not a data problem, and it fails
// loudly rather than silently no-op'ing.
package applyfn
