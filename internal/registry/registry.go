package registry

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// GlobalID opaquely identifies one distributed map, identical across
// every locality that shares it. It is backed by a UUID so it prints
// and marshals as an ordinary opaque string over the wire, without
// exposing the creation sequence number it was derived from.
type GlobalID [16]byte

// NewGlobalID derives a GlobalID from the creation sequence number the
// caller passes to dmap.Create, deterministically: every locality that calls
// dmap.Create with the same seq gets the byte-identical GlobalID,
// without an extra round trip to agree on one.
func NewGlobalID(seq uint64) GlobalID {
	var seed [8]byte
	for i := 0; i < 8; i++ {
		seed[i] = byte(seq >> (8 * i))
	}
	return GlobalID(uuid.NewSHA1(uuid.NameSpaceOID, seed[:]))
}

// String renders the GlobalID as a standard UUID string.
func (id GlobalID) String() string { return uuid.UUID(id).String() }

// MarshalJSON renders the GlobalID as its UUID string form.
func (id GlobalID) MarshalJSON() ([]byte, error) { return json.Marshal(id.String()) }

// UnmarshalJSON parses the UUID string form produced by MarshalJSON.
func (id *GlobalID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*id = GlobalID(u)
	return nil
}

// ErrAlreadyRegistered is returned by Register when the GlobalID already
// has an object bound to it on this locality.
var ErrAlreadyRegistered = errors.New("registry: GlobalID already registered")

// ErrNotFound is returned by Lookup when no object is bound to the
// GlobalID on this locality.
var ErrNotFound = errors.New("registry: GlobalID not found")

// Registry maps GlobalIDs to the locally-registered object backing
// them. The stored value is untyped: it is always a
// *dmap.Map[K,V] for some K,V chosen by the caller of Create, but the
// registry itself does not know or care about K/V, so that RPC dispatch
// code (internal/rpc) can hold one Registry regardless of how many
// distinct Map[K,V] instantiations are live in the process.
type Registry struct {
	mu      sync.RWMutex
	objects map[GlobalID]any
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{objects: make(map[GlobalID]any)}
}

// Register binds id to obj. It fails if id is already bound: a
// GlobalID is assigned once, at Create, and never rebound within a
// locality's lifetime.
func (r *Registry) Register(id GlobalID, obj any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.objects[id]; exists {
		return ErrAlreadyRegistered
	}
	r.objects[id] = obj
	return nil
}

// Lookup returns the object bound to id, if any.
func (r *Registry) Lookup(id GlobalID) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[id]
	return obj, ok
}

// Deregister removes id's binding, e.g. once Map.Close has drained
// pending buffers. It is a no-op if id was not registered.
func (r *Registry) Deregister(id GlobalID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// Len reports how many objects are currently registered on this
// locality.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
