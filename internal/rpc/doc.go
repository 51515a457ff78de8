// Package rpc is the HTTP/JSON transport that lets one locality execute
// an operation against a distributed map hosted on another.
//
// # Wire format
//
// One endpoint per (GlobalID, opcode): POST /rpc/{globalID}/{opcode}.
// The body is a JSON envelope specific to the opcode (see
// internal/dmap for the concrete request/response shapes); Runtime
// itself is opcode-agnostic; it dispatches to whatever Handler
// internal/dmap.Create registered for that (GlobalID, opcode) pair, the
// same closed-over-the-concrete-type trick internal/applyfn uses for
// callbacks, applied here to the fixed operation set instead.
//
// This generalizes the teacher's cluster.PostJSON/GetJSON, which spoke
// to a single, un-multiplexed coordinator endpoint per call; Runtime
// adds the per-(object,opcode) routing a real multi-tenant RPC surface
// needs, but keeps the teacher's "plain http.Client, JSON body, decode
// into out" request shape unchanged.
//
// # Concurrency
//
// ExecuteOnAll and the Async* variants fan out one goroutine per target
// locality; AsyncExecuteAt and friends accept a *handle.Handle so a
// caller juggling many outstanding calls to many localities gets one
// place to Wait(). No request holds a lock across the network call:
// Runtime's handler table is read under RLock and then released before
// the HTTP call begins.
package rpc
