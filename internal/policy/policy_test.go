package policy

import "testing"

func TestDefaultHasherIsDeterministic(t *testing.T) {
	h := DefaultHasher[string]()
	a := h.Hash("some-key")
	b := h.Hash("some-key")
	if a != b {
		t.Fatalf("Hash() = %d then %d, want identical results for the same key", a, b)
	}
}

func TestDefaultHasherDistinguishesKeys(t *testing.T) {
	h := DefaultHasher[string]()
	if h.Hash("a") == h.Hash("b") {
		t.Fatal("Hash() collided on two distinct short keys, unlikely for FNV-1a")
	}
}

func TestOverwritePolicy(t *testing.T) {
	p := Overwrite[int]()

	v, store := p.Resolve(0, 5, false)
	if !store || v != 5 {
		t.Fatalf("Resolve(absent) = (%d,%v), want (5,true)", v, store)
	}
	v, store = p.Resolve(1, 5, true)
	if !store || v != 5 {
		t.Fatalf("Resolve(present) = (%d,%v), want (5,true)", v, store)
	}
}

func TestRejectPolicy(t *testing.T) {
	p := Reject[int]()

	v, store := p.Resolve(0, 5, false)
	if !store || v != 5 {
		t.Fatalf("Resolve(absent) = (%d,%v), want (5,true)", v, store)
	}
	v, store = p.Resolve(1, 5, true)
	if store || v != 1 {
		t.Fatalf("Resolve(present) = (%d,%v), want (1,false)", v, store)
	}
}

func TestReducerPolicy(t *testing.T) {
	p := Reducer(func(existing, incoming int) int { return existing + incoming })

	v, store := p.Resolve(0, 5, false)
	if !store || v != 5 {
		t.Fatalf("Resolve(absent) = (%d,%v), want (5,true)", v, store)
	}
	v, store = p.Resolve(3, 5, true)
	if !store || v != 8 {
		t.Fatalf("Resolve(present) = (%d,%v), want (8,true)", v, store)
	}
}
