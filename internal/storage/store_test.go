package storage

import (
	"sort"
	"testing"
)

func TestMapBackendGetPut(t *testing.T) {
	b := NewMapBackend[string, int]()

	if _, ok := b.Get("a"); ok {
		t.Fatal("expected miss on empty backend")
	}

	b.Put("a", 1)
	v, ok := b.Get("a")
	if !ok || v != 1 {
		t.Fatalf("got (%v, %v), want (1, true)", v, ok)
	}

	b.Put("a", 2)
	v, ok = b.Get("a")
	if !ok || v != 2 {
		t.Fatalf("overwrite: got (%v, %v), want (2, true)", v, ok)
	}
}

func TestMapBackendDelete(t *testing.T) {
	b := NewMapBackend[string, int]()

	if b.Delete("missing") {
		t.Fatal("delete of absent key should report false")
	}

	b.Put("a", 1)
	if !b.Delete("a") {
		t.Fatal("delete of present key should report true")
	}
	if _, ok := b.Get("a"); ok {
		t.Fatal("key should be gone after delete")
	}
}

func TestMapBackendLenAndForEach(t *testing.T) {
	b := NewMapBackend[string, int]()
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		b.Put(k, v)
	}

	if b.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(want))
	}

	got := make(map[string]int)
	b.ForEach(func(k string, v int) { got[k] = v })

	if len(got) != len(want) {
		t.Fatalf("ForEach visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ForEach entry %q = %d, want %d", k, got[k], v)
		}
	}
}

func TestMapBackendKeys(t *testing.T) {
	b := NewMapBackend[string, int]()
	b.Put("a", 1)
	b.Put("b", 2)
	b.Put("c", 3)

	keys := b.Keys()
	sort.Strings(keys)
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}
}
