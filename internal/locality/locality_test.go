package locality

import "testing"

func TestNewDirectoryOrdersByID(t *testing.T) {
	members := []Locality{
		{ID: 2, Addr: "c"},
		{ID: 0, Addr: "a"},
		{ID: 1, Addr: "b"},
	}
	d := NewDirectory(1, members)

	all := d.All()
	if len(all) != 3 || all[0].ID != 0 || all[1].ID != 1 || all[2].ID != 2 {
		t.Fatalf("All() = %v, want sorted by ID", all)
	}
	if d.SelfID() != 1 || d.Self().Addr != "b" {
		t.Fatalf("Self() = %v, want locality 1 (b)", d.Self())
	}
}

func TestNewDirectoryPanicsOnSparseIDs(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewDirectory() with non-dense IDs did not panic")
		}
	}()
	NewDirectory(0, []Locality{{ID: 0, Addr: "a"}, {ID: 5, Addr: "b"}})
}

func TestNewDirectoryPanicsOnSelfOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewDirectory() with self out of range did not panic")
		}
	}()
	NewDirectory(9, []Locality{{ID: 0, Addr: "a"}})
}

func TestDirectoryAtAndIsSelf(t *testing.T) {
	d := NewDirectory(0, []Locality{{ID: 0, Addr: "a"}, {ID: 1, Addr: "b"}})

	l, ok := d.At(1)
	if !ok || l.Addr != "b" {
		t.Fatalf("At(1) = (%v,%v), want (b,true)", l, ok)
	}
	if _, ok := d.At(5); ok {
		t.Fatal("At() with out-of-range ID reported ok, want false")
	}
	if !d.IsSelf(0) || d.IsSelf(1) {
		t.Fatal("IsSelf() mismatched self ID 0")
	}
}

func TestLocalityEqualAndCompare(t *testing.T) {
	a := Locality{ID: 1, Addr: "x"}
	b := Locality{ID: 1, Addr: "x"}
	c := Locality{ID: 2, Addr: "x"}

	if !a.Equal(b) {
		t.Fatal("Equal() = false for identical localities")
	}
	if a.Equal(c) {
		t.Fatal("Equal() = true for localities with different IDs")
	}
	if a.Compare(c) >= 0 {
		t.Fatalf("Compare() = %d, want negative since a.ID < c.ID", a.Compare(c))
	}
}
