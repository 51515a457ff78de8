package dmap

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/fernglade/dishmap/internal/applyfn"
	"github.com/fernglade/dishmap/internal/handle"
)

// ForEachEntry invokes the function registered under funcName against
// every resident (key, value) pair on every locality, fanning out one
// sub-task per locality (plus one per local bucket, via
// internal/shard.ForEachEntry). Ordering across or within localities is
// unspecified.
func (m *Map[K, V]) ForEachEntry(funcName string, args any) error {
	h := handle.New()
	m.AsyncForEachEntry(h, funcName, args)
	return h.Wait()
}

// AsyncForEachEntry fans ForEachEntry's work out under h without
// blocking for it to complete.
func (m *Map[K, V]) AsyncForEachEntry(h *handle.Handle, funcName string, args any) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		h.Go(func() error { return fmt.Errorf("dmap: marshal foreach args: %w", err) })
		return
	}
	h.Go(func() error {
		return m.shard.ForEachEntry(func(k K, v *V) error {
			return applyfn.InvokeForEachEntry[K, V](funcName, k, v, rawArgs)
		})
	})
	for _, loc := range m.dir.All() {
		if m.dir.IsSelf(loc.ID) {
			continue
		}
		loc := loc
		h.Go(func() error {
			req := foreachRequest{Kind: "entry", FuncName: funcName, Args: rawArgs}
			return m.rt.ExecuteAt(context.Background(), loc.ID, m.id, opForEach, req)
		})
	}
}

// ForEachKey invokes the function registered under funcName against
// every resident key, with no access to the value, on every locality.
func (m *Map[K, V]) ForEachKey(funcName string, args any) error {
	h := handle.New()
	m.AsyncForEachKey(h, funcName, args)
	return h.Wait()
}

// AsyncForEachKey fans ForEachKey's work out under h without blocking
// for it to complete.
func (m *Map[K, V]) AsyncForEachKey(h *handle.Handle, funcName string, args any) {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		h.Go(func() error { return fmt.Errorf("dmap: marshal foreach args: %w", err) })
		return
	}
	h.Go(func() error {
		return m.shard.ForEachKey(func(k K) error {
			return applyfn.InvokeForEachKey[K](funcName, k, rawArgs)
		})
	})
	for _, loc := range m.dir.All() {
		if m.dir.IsSelf(loc.ID) {
			continue
		}
		loc := loc
		h.Go(func() error {
			req := foreachRequest{Kind: "key", FuncName: funcName, Args: rawArgs}
			return m.rt.ExecuteAt(context.Background(), loc.ID, m.id, opForEach, req)
		})
	}
}

// Clear removes every entry from every locality's shard. It is not
// synchronized with concurrent writers on any locality, matching the
// enclosing system's non-goal of atomic collective operations.
func (m *Map[K, V]) Clear() error {
	h := handle.New()
	h.Go(func() error {
		m.shard.Clear()
		return nil
	})
	for _, loc := range m.dir.All() {
		if m.dir.IsSelf(loc.ID) {
			continue
		}
		loc := loc
		h.Go(func() error { return m.rt.ExecuteAt(context.Background(), loc.ID, m.id, opClear, nil) })
	}
	return h.Wait()
}

// PrintAllEntries has every locality dump its own shard to its own log,
// for diagnostics; unlike ForEachEntry it does not return data to the
// caller, matching the console-diagnostic role this operation plays in
// SHAD's original hashmap implementation.
func (m *Map[K, V]) PrintAllEntries() error {
	h := handle.New()
	h.Go(func() error {
		m.printLocalEntries()
		return nil
	})
	for _, loc := range m.dir.All() {
		if m.dir.IsSelf(loc.ID) {
			continue
		}
		loc := loc
		h.Go(func() error { return m.rt.ExecuteAt(context.Background(), loc.ID, m.id, opPrintAll, nil) })
	}
	return h.Wait()
}

func (m *Map[K, V]) printLocalEntries() {
	for _, e := range m.shard.Entries() {
		log.Printf("dmap[%s] locality=%d %v -> %v", m.id, m.dir.SelfID(), e.Key, e.Value)
	}
}
