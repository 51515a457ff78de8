package dmap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fernglade/dishmap/internal/applyfn"
	"github.com/fernglade/dishmap/internal/handle"
)

// Lookup returns the value stored under k and whether it was present,
// querying whichever locality owns k.
func (m *Map[K, V]) Lookup(k K) (V, bool, error) {
	owner := m.router.Owner(k)
	if owner == m.dir.SelfID() {
		v, ok := m.shard.Lookup(k)
		return v, ok, nil
	}
	var resp lookupResponse[V]
	req := lookupRequest[K]{Key: k}
	if err := m.rt.ExecuteAtWithRet(context.Background(), owner, m.id, opLookup, req, &resp); err != nil {
		var zero V
		return zero, false, err
	}
	return resp.Value, resp.Found, nil
}

// AsyncLookup performs Lookup on a new goroutine grouped under h,
// writing its result into out/found once h.Wait() returns.
func (m *Map[K, V]) AsyncLookup(h *handle.Handle, k K, out *V, found *bool) {
	h.Go(func() error {
		v, ok, err := m.Lookup(k)
		if err != nil {
			return err
		}
		*out = v
		*found = ok
		return nil
	})
}

// Apply invokes the function registered under funcName (see
// internal/applyfn) against the value stored at k, on whichever
// locality owns k, holding that locality's owning bucket lock for the
// duration. args is JSON-marshaled once and shipped verbatim to the
// owner.
func (m *Map[K, V]) Apply(k K, funcName string, args any) error {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("dmap: marshal apply args: %w", err)
	}
	owner := m.router.Owner(k)
	if owner == m.dir.SelfID() {
		return m.shard.Apply(k, func(v *V) error {
			return applyfn.InvokeApply[V](funcName, v, rawArgs)
		})
	}
	req := applyRequest[K]{Key: k, FuncName: funcName, Args: rawArgs}
	return m.rt.ExecuteAt(context.Background(), owner, m.id, opApply, req)
}

// AsyncApply performs Apply on a new goroutine grouped under h.
func (m *Map[K, V]) AsyncApply(h *handle.Handle, k K, funcName string, args any) {
	h.Go(func() error { return m.Apply(k, funcName, args) })
}
