// Package buffer implements per-destination insertion aggregation:
// BufferedInsert appends to an in-memory queue instead of issuing an
// RPC per key, and the queue ships as one batched "insert many" call
// once it crosses a size threshold or is flushed on demand.
//
// # Layout
//
// A Vector holds one Outbound queue per remote locality. A locality
// never buffers entries destined for itself — BufferedInsert routes
// same-locality keys straight to the local shard, matching the
// enclosing system's local-fast-path invariant (dmap.Map enforces this
// before ever touching a Vector).
//
// Draining a full Outbound uses the same FIFO drain idiom as the
// simulator's event queues in the retrieved unixpickle-dist-sys pack
// (essentials.OrderedDelete(&queue, 0) in a loop), applied here to
// insertion batches instead of simulated network events.
package buffer
