package locality

import (
	"errors"
	"sync"

	"golang.org/x/exp/slices"
)

// RegisterRequest is the payload a locality sends the directory service
// to join the fleet, before the fixed member set is finalized.
type RegisterRequest struct {
	Addr string `json:"addr"`
}

// RegisterResponse is the directory service's reply to a RegisterRequest.
type RegisterResponse struct {
	ID    int  `json:"id"`
	Ready bool `json:"ready"`
}

// DirectoryPayload carries the finalized member list, broadcast once
// registration completes.
type DirectoryPayload struct {
	Members []Locality `json:"members"`
}

// ErrRegistrationTableFull is returned by RegistrationTable.Register once
// the configured member count has already been reached.
var ErrRegistrationTableFull = errors.New("locality: registration table is full")

// RegistrationTable is the directory service's bookkeeping for the
// one-time bootstrap handshake: it accepts registrations in arrival
// order, assigns dense IDs, and reports once the fleet is complete.
//
// This is the directory-service analogue of a coordinator's node list:
// same dedupe-by-address and index lookup pattern, narrowed to a
// fixed-size, append-only registration rather than an ever-changing
// cluster membership.
type RegistrationTable struct {
	mu      sync.Mutex
	members []Locality
	want    int
}

// NewRegistrationTable creates a table that closes once want localities
// have registered.
func NewRegistrationTable(want int) *RegistrationTable {
	return &RegistrationTable{want: want}
}

// Register records addr's registration, returning the ID it was
// assigned. Re-registering the same address (e.g. a locality retrying
// after a dropped response) returns its previously assigned ID rather
// than allocating a new one. ready is true once the table holds exactly
// want distinct localities.
func (t *RegistrationTable) Register(addr string) (id int, ready bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx := slices.IndexFunc(t.members, func(l Locality) bool { return l.Addr == addr }); idx >= 0 {
		return t.members[idx].ID, len(t.members) >= t.want, nil
	}

	if len(t.members) >= t.want {
		return 0, false, ErrRegistrationTableFull
	}

	id = len(t.members)
	t.members = append(t.members, Locality{ID: id, Addr: addr})
	return id, len(t.members) >= t.want, nil
}

// Snapshot returns the current registration list, ordered by ID. The
// returned slice is safe to hand to NewDirectory once len(result) ==
// the table's configured want.
func (t *RegistrationTable) Snapshot() []Locality {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Locality, len(t.members))
	copy(out, t.members)
	return out
}

// Len reports how many localities have registered so far.
func (t *RegistrationTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.members)
}
