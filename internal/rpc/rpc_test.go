package rpc

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/fernglade/dishmap/internal/locality"
	"github.com/fernglade/dishmap/internal/registry"
)

func newTestFleet(t *testing.T) (*Runtime, *httptest.Server, registry.GlobalID) {
	t.Helper()
	id := registry.NewGlobalID(1)

	reg := registry.New()
	if err := reg.Register(id, struct{}{}); err != nil {
		t.Fatalf("reg.Register() = %v", err)
	}
	rt := New(nil, reg) // dir installed once srv's address is known
	srv := httptest.NewServer(rt)
	t.Cleanup(srv.Close)

	dir := locality.NewDirectory(0, []locality.Locality{{ID: 0, Addr: srv.URL}})
	rt.dir = dir
	return rt, srv, id
}

func TestExecuteAtRoundTrip(t *testing.T) {
	rt, _, id := newTestFleet(t)

	rt.RegisterHandler(id, "lookup", func(_ context.Context, body json.RawMessage) (json.RawMessage, error) {
		var req struct{ Key string }
		_ = json.Unmarshal(body, &req)
		return json.Marshal(map[string]any{"key": req.Key, "found": true})
	})

	var out struct {
		Key   string `json:"key"`
		Found bool   `json:"found"`
	}
	err := rt.ExecuteAtWithRet(context.Background(), 0, id, "lookup", map[string]string{"Key": "x"}, &out)
	if err != nil {
		t.Fatalf("ExecuteAtWithRet() = %v", err)
	}
	if out.Key != "x" || !out.Found {
		t.Fatalf("out = %+v, want key=x found=true", out)
	}
}

func TestExecuteAtNoHandler(t *testing.T) {
	rt, _, id := newTestFleet(t)
	err := rt.ExecuteAt(context.Background(), 0, id, "insert", nil)
	if err == nil {
		t.Fatal("ExecuteAt() with no registered handler = nil, want error")
	}
}

func TestExecuteAtUnknownLocality(t *testing.T) {
	rt, _, id := newTestFleet(t)
	err := rt.ExecuteAt(context.Background(), 7, id, "insert", nil)
	if err == nil {
		t.Fatal("ExecuteAt() with unknown locality = nil, want error")
	}
}

func TestExecuteAtUnregisteredGlobalID(t *testing.T) {
	rt, _, _ := newTestFleet(t)
	unregistered := registry.NewGlobalID(999)
	err := rt.ExecuteAt(context.Background(), 0, unregistered, "insert", nil)
	if err == nil {
		t.Fatal("ExecuteAt() against an unregistered GlobalID = nil, want error")
	}
}

func TestExecuteOnAllJoinsErrors(t *testing.T) {
	id := registry.NewGlobalID(2)
	regA, regB := registry.New(), registry.New()
	if err := regA.Register(id, struct{}{}); err != nil {
		t.Fatalf("regA.Register() = %v", err)
	}
	if err := regB.Register(id, struct{}{}); err != nil {
		t.Fatalf("regB.Register() = %v", err)
	}
	rtA := New(nil, regA)
	srvA := httptest.NewServer(rtA)
	defer srvA.Close()
	rtB := New(nil, regB)
	srvB := httptest.NewServer(rtB)
	defer srvB.Close()

	dir := locality.NewDirectory(0, []locality.Locality{
		{ID: 0, Addr: srvA.URL},
		{ID: 1, Addr: srvB.URL},
	})
	rtA.dir = dir

	rtA.RegisterHandler(id, "clear", func(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
		return nil, nil
	})
	// rtB deliberately has no handler registered for "clear", to exercise
	// ExecuteOnAll surfacing a per-target failure without aborting the rest.

	err := rtA.ExecuteOnAll(context.Background(), []int{0, 1}, id, "clear", nil)
	if err == nil {
		t.Fatal("ExecuteOnAll() = nil, want error from the target with no handler")
	}
}
