package buffer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOutboundAppendAndFlushFIFO(t *testing.T) {
	o := NewOutbound[string, int](10)
	o.Append(Entry[string, int]{Key: "a", Value: 1})
	o.Append(Entry[string, int]{Key: "b", Value: 2})
	o.Append(Entry[string, int]{Key: "c", Value: 3})

	got := o.Flush()
	want := []Entry[string, int]{{"a", 1}, {"b", 2}, {"c", 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Flush() mismatch (-want +got):\n%s", diff)
	}
	if o.Len() != 0 {
		t.Fatalf("Len() after Flush = %d, want 0", o.Len())
	}
}

func TestOutboundAppendSignalsThreshold(t *testing.T) {
	o := NewOutbound[string, int](2)
	if shouldFlush := o.Append(Entry[string, int]{Key: "a", Value: 1}); shouldFlush {
		t.Fatal("Append() signaled flush before reaching threshold")
	}
	if shouldFlush := o.Append(Entry[string, int]{Key: "b", Value: 2}); !shouldFlush {
		t.Fatal("Append() did not signal flush at threshold")
	}
}

func TestVectorPerDestinationIsolation(t *testing.T) {
	v := NewVector[string, int](10)
	v.Append(1, Entry[string, int]{Key: "a", Value: 1})
	v.Append(2, Entry[string, int]{Key: "b", Value: 2})

	if v.Len(1) != 1 || v.Len(2) != 1 {
		t.Fatalf("Len(1)=%d Len(2)=%d, want 1 and 1", v.Len(1), v.Len(2))
	}

	got1 := v.Flush(1)
	if len(got1) != 1 || got1[0].Key != "a" {
		t.Fatalf("Flush(1) = %v, want [{a 1}]", got1)
	}
	if v.Len(2) != 1 {
		t.Fatalf("Flush(1) affected destination 2's queue: Len(2) = %d", v.Len(2))
	}
}

func TestVectorAppendToSelfPanics(t *testing.T) {
	v := NewVector[string, int](10)
	v.SetSelf(3)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Append(self, ...) did not panic")
		}
	}()
	v.Append(3, Entry[string, int]{Key: "a", Value: 1})
}

func TestVectorFlushAll(t *testing.T) {
	v := NewVector[string, int](10)
	v.Append(1, Entry[string, int]{Key: "a", Value: 1})
	v.Append(2, Entry[string, int]{Key: "b", Value: 2})
	v.Append(2, Entry[string, int]{Key: "c", Value: 3})

	all := v.FlushAll()
	if len(all[1]) != 1 || len(all[2]) != 2 {
		t.Fatalf("FlushAll() = %v, want 1 entry for dest 1 and 2 for dest 2", all)
	}
	if len(v.FlushAll()) != 0 {
		t.Fatal("FlushAll() after drain returned non-empty map")
	}
}
