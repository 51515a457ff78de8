// Package handle implements the completion-handle model that correlates
// a fleet of asynchronous operations into one waitable group.
//
// # Overview
//
// Every async operation on a distributed map (AsyncInsert, AsyncApply,
// the Async ForEach* sweeps, and the async flush an aggregation buffer
// performs on overflow) is issued under a Handle. Dispatch increments
// the handle's outstanding count; completion — whether the operation ran
// locally or round-tripped over the RPC runtime — decrements it. Wait
// blocks until the count reaches zero.
//
// # Not reference counted, not transitive
//
// A Handle is a lifecycle token, not a shared pointer: nothing chains
// handles together, and an async operation issued from inside another
// async operation's callback only extends the same group if it is
// explicitly given the same Handle. Handles cannot be cancelled and
// in-flight operations always run to completion, matching the enclosing
// system's stated non-goal of cancellation support.
//
// # Errors
//
// Transport or apply failures under a Handle are fatal to that handle's
// Wait, not to the process: Wait joins every error recorded by its
// member operations and returns them together.
package handle
