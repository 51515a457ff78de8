package applyfn

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ApplyFunc mutates a value in place given a flat, previously-marshaled
// argument tuple. It must be a pure function of v and args: no captured
// state, since the same registered name must behave identically on
// whichever locality resolves it.
type ApplyFunc[V any] func(v *V, args json.RawMessage) error

// ForEachEntryFunc is invoked once per resident key during a
// Map.ForEachEntry sweep, with the bucket's write lock held.
type ForEachEntryFunc[K comparable, V any] func(k K, v *V, args json.RawMessage) error

// ForEachKeyFunc is invoked once per resident key during a
// Map.ForEachKey sweep; unlike ForEachEntryFunc it has no access to the
// value.
type ForEachKeyFunc[K comparable] func(k K, args json.RawMessage) error

var registry sync.Map // string name -> any (one of the three func types above)

// RegisterApply binds name to fn for later resolution by InvokeApply. It
// panics if name is already registered, since two different functions
// racing for the same stable symbol is a build-time programming error,
// not a runtime condition to recover from.
func RegisterApply[V any](name string, fn ApplyFunc[V]) {
	mustRegister(name, fn)
}

// RegisterForEachEntry binds name to fn for resolution by
// InvokeForEachEntry.
func RegisterForEachEntry[K comparable, V any](name string, fn ForEachEntryFunc[K, V]) {
	mustRegister(name, fn)
}

// RegisterForEachKey binds name to fn for resolution by
// InvokeForEachKey.
func RegisterForEachKey[K comparable](name string, fn ForEachKeyFunc[K]) {
	mustRegister(name, fn)
}

func mustRegister(name string, fn any) {
	if name == "" {
		panic("applyfn: cannot register an empty name")
	}
	if _, loaded := registry.LoadOrStore(name, fn); loaded {
		panic(fmt.Sprintf("applyfn: %q already registered", name))
	}
}

// InvokeApply resolves name and invokes it against v and args. It
// returns an error, rather than panicking, when name is unknown or was
// registered with a mismatched type — the mismatch case means one
// locality is running different code than the one that shipped the
// call, which is a deployment error the caller (an RPC handler) should
// report rather than crash on.
func InvokeApply[V any](name string, v *V, args json.RawMessage) error {
	raw, ok := registry.Load(name)
	if !ok {
		return fmt.Errorf("applyfn: no function registered under %q", name)
	}
	fn, ok := raw.(ApplyFunc[V])
	if !ok {
		return fmt.Errorf("applyfn: %q is registered with an incompatible signature", name)
	}
	return fn(v, args)
}

// InvokeForEachEntry resolves name and invokes it against k, v and args.
func InvokeForEachEntry[K comparable, V any](name string, k K, v *V, args json.RawMessage) error {
	raw, ok := registry.Load(name)
	if !ok {
		return fmt.Errorf("applyfn: no function registered under %q", name)
	}
	fn, ok := raw.(ForEachEntryFunc[K, V])
	if !ok {
		return fmt.Errorf("applyfn: %q is registered with an incompatible signature", name)
	}
	return fn(k, v, args)
}

// InvokeForEachKey resolves name and invokes it against k and args.
func InvokeForEachKey[K comparable](name string, k K, args json.RawMessage) error {
	raw, ok := registry.Load(name)
	if !ok {
		return fmt.Errorf("applyfn: no function registered under %q", name)
	}
	fn, ok := raw.(ForEachKeyFunc[K])
	if !ok {
		return fmt.Errorf("applyfn: %q is registered with an incompatible signature", name)
	}
	return fn(k, args)
}

// Identity registers, under name, an ApplyFunc that leaves the value
// unchanged. It exists so callers and tests can exercise
// Apply(k, fn=identity) without hand-writing a no-op for every value
// type, per the round-trip property that identity-apply is a no-op.
func Identity[V any](name string) {
	RegisterApply(name, ApplyFunc[V](func(_ *V, _ json.RawMessage) error { return nil }))
}
