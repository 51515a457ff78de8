package shard

import (
	"encoding/json"
	"errors"
	"hash/maphash"
	"sync"

	"github.com/fernglade/dishmap/internal/handle"
	"github.com/fernglade/dishmap/internal/policy"
	"github.com/fernglade/dishmap/internal/storage"
)

// ErrKeyNotFound names the absent-key condition. No operation in this
// package returns it: Lookup and Erase treat absence as a normal,
// non-error outcome, and Apply creates a missing key from the zero value.
var ErrKeyNotFound = errors.New("shard: key not found")

// Entry is one key-value pair, the unit ForEachEntry and buffered-insert
// replay operate on.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

type bucket[K comparable, V any] struct {
	mu      sync.RWMutex
	backend storage.Backend[K, V]
}

// Shard is the local, bucketed hashmap owned by one locality.
type Shard[K comparable, V any] struct {
	buckets []bucket[K, V]
	insert  policy.InsertPolicy[V]
	seed    maphash.Seed
}

// New creates a Shard with numBuckets buckets (at least 1) governed by
// insert for conflict resolution on Insert.
func New[K comparable, V any](numBuckets int, insert policy.InsertPolicy[V]) *Shard[K, V] {
	if numBuckets < 1 {
		numBuckets = 1
	}
	if insert == nil {
		insert = policy.Overwrite[V]()
	}
	s := &Shard[K, V]{
		buckets: make([]bucket[K, V], numBuckets),
		insert:  insert,
		seed:    maphash.MakeSeed(),
	}
	for i := range s.buckets {
		s.buckets[i].backend = storage.NewMapBackend[K, V]()
	}
	return s
}

// NumBuckets returns the fixed bucket count.
func (s *Shard[K, V]) NumBuckets() int { return len(s.buckets) }

// bucketFor picks a bucket using a hash independent of any router the
// caller might be using to pick this Shard in the first place: a
// per-Shard random seed over the key's JSON encoding, unrelated to
// internal/router's deterministic seed-0 hash.
func (s *Shard[K, V]) bucketFor(k K) *bucket[K, V] {
	b, err := json.Marshal(k)
	if err != nil {
		return &s.buckets[0]
	}
	h := maphash.Bytes(s.seed, b)
	return &s.buckets[h%uint64(len(s.buckets))]
}

// Insert stores v under k according to the Shard's InsertPolicy,
// reporting whether the value was actually stored (false if the policy
// rejected it, e.g. policy.Reject on an already-present key).
func (s *Shard[K, V]) Insert(k K, v V) bool {
	buck := s.bucketFor(k)
	buck.mu.Lock()
	defer buck.mu.Unlock()

	existing, present := buck.backend.Get(k)
	value, store := s.insert.Resolve(existing, v, present)
	if store {
		buck.backend.Put(k, value)
	}
	return store
}

// AsyncInsert performs Insert on a new goroutine grouped under h, so
// that concurrent local inserters sharing h contribute to the same
// completion count as remote ones.
func (s *Shard[K, V]) AsyncInsert(h *handle.Handle, k K, v V) {
	h.Go(func() error {
		s.Insert(k, v)
		return nil
	})
}

// Erase removes k if present; it is a no-op otherwise.
func (s *Shard[K, V]) Erase(k K) {
	buck := s.bucketFor(k)
	buck.mu.Lock()
	defer buck.mu.Unlock()
	buck.backend.Delete(k)
}

// AsyncErase performs Erase on a new goroutine grouped under h.
func (s *Shard[K, V]) AsyncErase(h *handle.Handle, k K) {
	h.Go(func() error {
		s.Erase(k)
		return nil
	})
}

// Lookup returns the value stored under k and whether it was present.
func (s *Shard[K, V]) Lookup(k K) (V, bool) {
	buck := s.bucketFor(k)
	buck.mu.RLock()
	defer buck.mu.RUnlock()
	return buck.backend.Get(k)
}

// AsyncLookup performs Lookup on a new goroutine grouped under h,
// writing its result into out once the handle's Wait returns; out is
// only safe to read after Wait.
func (s *Shard[K, V]) AsyncLookup(h *handle.Handle, k K, out *V, found *bool) {
	h.Go(func() error {
		v, ok := s.Lookup(k)
		*out = v
		*found = ok
		return nil
	})
}

// Apply invokes fn against the value stored at k, holding k's bucket
// write lock for the duration, and stores back whatever fn leaves in
// *v. If k is absent, fn runs against a fresh zero value and, if fn
// leaves that zero value in place without deleting it, the zero value is
// inserted — matching ordinary map semantics ("mutate in place, creating
// on first touch") rather than silently no-op'ing.  fn must not call
// back into this Shard: it already holds the lock Insert/Erase/Lookup
// need.
func (s *Shard[K, V]) Apply(k K, fn func(v *V) error) error {
	buck := s.bucketFor(k)
	buck.mu.Lock()
	defer buck.mu.Unlock()

	v, _ := buck.backend.Get(k)
	if err := fn(&v); err != nil {
		return err
	}
	buck.backend.Put(k, v)
	return nil
}

// AsyncApply performs Apply on a new goroutine grouped under h.
func (s *Shard[K, V]) AsyncApply(h *handle.Handle, k K, fn func(v *V) error) {
	h.Go(func() error {
		return s.Apply(k, fn)
	})
}

// Clear removes every entry from every bucket. It is not synchronized
// with concurrent writers: an Insert racing a Clear may or may not
// survive it, per the enclosing system's stated non-goal of atomic
// collective operations.
func (s *Shard[K, V]) Clear() {
	for i := range s.buckets {
		buck := &s.buckets[i]
		buck.mu.Lock()
		buck.backend = storage.NewMapBackend[K, V]()
		buck.mu.Unlock()
	}
}

// Size returns the total number of entries across every bucket. It is
// computed without a shard-wide lock and may race with concurrent
// mutators, per the enclosing system's eventually-consistent size
// contract.
func (s *Shard[K, V]) Size() int {
	total := 0
	for i := range s.buckets {
		buck := &s.buckets[i]
		buck.mu.RLock()
		total += buck.backend.Len()
		buck.mu.RUnlock()
	}
	return total
}

// ForEachEntry invokes fn once per resident (key, value) pair, fanning
// out one goroutine per bucket so buckets are visited in parallel.
// Ordering across or within buckets is unspecified. fn runs with its
// bucket's write lock held and may mutate *v in place; fn must not
// insert into or erase from this Shard.
func (s *Shard[K, V]) ForEachEntry(fn func(k K, v *V) error) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := range s.buckets {
		buck := &s.buckets[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			buck.mu.Lock()
			defer buck.mu.Unlock()
			for _, k := range buck.backend.Keys() {
				v, _ := buck.backend.Get(k)
				if err := fn(k, &v); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					buck.backend.Put(k, v)
					return
				}
				buck.backend.Put(k, v)
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// ForEachKey invokes fn once per resident key, with no access to the
// value, taking each bucket's read lock rather than its write lock since
// there is nothing to mutate.
func (s *Shard[K, V]) ForEachKey(fn func(k K) error) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := range s.buckets {
		buck := &s.buckets[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			buck.mu.RLock()
			defer buck.mu.RUnlock()
			for _, k := range buck.backend.Keys() {
				if err := fn(k); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// AsyncForEachEntry fans out one sub-task per bucket, all grouped under
// h, so a single Wait(h) observes the full sweep.
func (s *Shard[K, V]) AsyncForEachEntry(h *handle.Handle, fn func(k K, v *V) error) {
	for i := range s.buckets {
		buck := &s.buckets[i]
		h.Go(func() error {
			buck.mu.Lock()
			defer buck.mu.Unlock()
			for _, k := range buck.backend.Keys() {
				v, _ := buck.backend.Get(k)
				if err := fn(k, &v); err != nil {
					buck.backend.Put(k, v)
					return err
				}
				buck.backend.Put(k, v)
			}
			return nil
		})
	}
}

// AsyncForEachKey fans out one sub-task per bucket, all grouped under h.
func (s *Shard[K, V]) AsyncForEachKey(h *handle.Handle, fn func(k K) error) {
	for i := range s.buckets {
		buck := &s.buckets[i]
		h.Go(func() error {
			buck.mu.RLock()
			defer buck.mu.RUnlock()
			for _, k := range buck.backend.Keys() {
				if err := fn(k); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

// Entries returns a snapshot copy of every resident entry. It is used by
// PrintAllEntries and by tests; like Size, it is not a consistent
// snapshot under concurrent mutation.
func (s *Shard[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], 0, s.Size())
	for i := range s.buckets {
		buck := &s.buckets[i]
		buck.mu.RLock()
		buck.backend.ForEach(func(k K, v V) {
			out = append(out, Entry[K, V]{Key: k, Value: v})
		})
		buck.mu.RUnlock()
	}
	return out
}
