package locality

import "testing"

func TestRegistrationTableAssignsDenseIDs(t *testing.T) {
	rt := NewRegistrationTable(2)

	id0, ready0, err := rt.Register("addr-a")
	if err != nil || id0 != 0 || ready0 {
		t.Fatalf("Register(addr-a) = (%d,%v,%v), want (0,false,nil)", id0, ready0, err)
	}

	id1, ready1, err := rt.Register("addr-b")
	if err != nil || id1 != 1 || !ready1 {
		t.Fatalf("Register(addr-b) = (%d,%v,%v), want (1,true,nil)", id1, ready1, err)
	}
}

func TestRegistrationTableIsIdempotentPerAddr(t *testing.T) {
	rt := NewRegistrationTable(2)
	id, _, _ := rt.Register("addr-a")
	idAgain, _, err := rt.Register("addr-a")
	if err != nil || idAgain != id {
		t.Fatalf("re-Register(addr-a) = (%d,%v), want (%d,nil)", idAgain, err, id)
	}
	if rt.Len() != 1 {
		t.Fatalf("Len() = %d after re-registering the same address, want 1", rt.Len())
	}
}

func TestRegistrationTableRejectsPastCapacity(t *testing.T) {
	rt := NewRegistrationTable(1)
	if _, _, err := rt.Register("addr-a"); err != nil {
		t.Fatalf("Register(addr-a) = %v, want nil", err)
	}
	if _, _, err := rt.Register("addr-b"); err != ErrRegistrationTableFull {
		t.Fatalf("Register() past capacity = %v, want ErrRegistrationTableFull", err)
	}
}

func TestRegistrationTableSnapshotIsOrderedAndCopied(t *testing.T) {
	rt := NewRegistrationTable(2)
	rt.Register("addr-a")
	rt.Register("addr-b")

	snap := rt.Snapshot()
	if len(snap) != 2 || snap[0].ID != 0 || snap[1].ID != 1 {
		t.Fatalf("Snapshot() = %v, want ordered by ID", snap)
	}
	snap[0].Addr = "mutated"
	if rt.Snapshot()[0].Addr == "mutated" {
		t.Fatal("Snapshot() leaked a reference to internal state")
	}
}
