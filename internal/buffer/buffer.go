package buffer

import (
	"sync"

	"github.com/unixpickle/essentials"
)

// DefaultThreshold is the entry count past which Outbound.Append
// triggers an automatic flush, used whenever a Vector is built without
// an explicit threshold.
const DefaultThreshold = 256

// Entry is one buffered key-value pair awaiting shipment, keyed
// generically so a Vector[K,V] can serve any Map[K,V] instantiation.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Outbound is the FIFO queue of entries buffered for one destination
// locality. Append and Flush are safe for concurrent use; ordering
// among concurrent appenders is not guaranteed beyond "each Append is
// atomic," matching the enclosing system's non-goal of a total order
// across localities.
type Outbound[K comparable, V any] struct {
	mu        sync.Mutex
	entries   []Entry[K, V]
	threshold int
}

// NewOutbound creates an empty queue that auto-flushes past threshold
// entries (DefaultThreshold if threshold <= 0).
func NewOutbound[K comparable, V any](threshold int) *Outbound[K, V] {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Outbound[K, V]{threshold: threshold}
}

// Append adds e to the queue. It returns true if the append pushed the
// queue's length to or past its threshold, signaling the caller (a
// Vector) that this destination should be flushed now.
func (o *Outbound[K, V]) Append(e Entry[K, V]) (shouldFlush bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, e)
	return len(o.entries) >= o.threshold
}

// Flush drains every buffered entry, in FIFO order, and returns them
// for shipment. The queue is empty again once Flush returns.
func (o *Outbound[K, V]) Flush() []Entry[K, V] {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Entry[K, V], 0, len(o.entries))
	for len(o.entries) > 0 {
		out = append(out, o.entries[0])
		essentials.OrderedDelete(&o.entries, 0)
	}
	return out
}

// Len reports the number of entries currently buffered.
func (o *Outbound[K, V]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

// Vector holds one Outbound queue per remote locality, indexed by
// locality ID.
type Vector[K comparable, V any] struct {
	mu      sync.RWMutex
	byDest  map[int]*Outbound[K, V]
	thresh  int
	selfID  int
	hasSelf bool
}

// NewVector creates a Vector whose per-destination queues use
// threshold (DefaultThreshold if threshold <= 0). self, once set via
// SetSelf, is never given a queue: same-locality inserts bypass
// buffering entirely.
func NewVector[K comparable, V any](threshold int) *Vector[K, V] {
	return &Vector[K, V]{byDest: make(map[int]*Outbound[K, V]), thresh: threshold}
}

// SetSelf records this locality's own ID so Append can refuse to
// buffer entries destined for it (a caller programming error: local
// inserts should go straight to the shard).
func (v *Vector[K, V]) SetSelf(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selfID = id
	v.hasSelf = true
}

func (v *Vector[K, V]) outboundFor(dest int) *Outbound[K, V] {
	v.mu.Lock()
	defer v.mu.Unlock()
	o, ok := v.byDest[dest]
	if !ok {
		o = NewOutbound[K, V](v.thresh)
		v.byDest[dest] = o
	}
	return o
}

// Append buffers e for shipment to dest. It panics if dest is this
// Vector's own locality (SetSelf), since buffering a local write is
// always a bug in the caller, not a runtime condition.
func (v *Vector[K, V]) Append(dest int, e Entry[K, V]) (shouldFlush bool) {
	v.mu.RLock()
	self, hasSelf := v.selfID, v.hasSelf
	v.mu.RUnlock()
	if hasSelf && dest == self {
		panic("buffer: refusing to buffer an entry destined for this locality")
	}
	return v.outboundFor(dest).Append(e)
}

// Flush drains and returns the entries buffered for dest.
func (v *Vector[K, V]) Flush(dest int) []Entry[K, V] {
	return v.outboundFor(dest).Flush()
}

// FlushAll drains every destination's queue, returning a map from
// locality ID to its drained entries. Destinations with nothing
// buffered are omitted.
func (v *Vector[K, V]) FlushAll() map[int][]Entry[K, V] {
	v.mu.RLock()
	dests := make([]int, 0, len(v.byDest))
	for d := range v.byDest {
		dests = append(dests, d)
	}
	v.mu.RUnlock()

	out := make(map[int][]Entry[K, V])
	for _, d := range dests {
		if entries := v.Flush(d); len(entries) > 0 {
			out[d] = entries
		}
	}
	return out
}

// Len reports how many entries are buffered for dest.
func (v *Vector[K, V]) Len(dest int) int {
	return v.outboundFor(dest).Len()
}

// LenCap reports the auto-flush threshold every destination's queue in
// this Vector shares.
func (v *Vector[K, V]) LenCap() int {
	if v.thresh <= 0 {
		return DefaultThreshold
	}
	return v.thresh
}
