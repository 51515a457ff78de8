package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fernglade/dishmap/internal/handle"
	"github.com/fernglade/dishmap/internal/locality"
	"github.com/fernglade/dishmap/internal/registry"
)

// Handler executes one opcode against the object bound to a GlobalID
// and returns the JSON-encoded result. body is the raw request payload;
// a Handler that ignores its input (e.g. "size") still receives it for
// a uniform signature.
type Handler func(ctx context.Context, body json.RawMessage) (json.RawMessage, error)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Runtime is one locality's RPC endpoint: an HTTP handler for inbound
// calls and a client for outbound ones, sharing the fleet's Directory
// to resolve locality IDs to addresses and the locality's Registry to
// resolve which GlobalIDs are actually live objects on this process.
type Runtime struct {
	dir *locality.Directory
	reg *registry.Registry

	mu       sync.RWMutex
	handlers map[registry.GlobalID]map[string]Handler
}

// New returns a Runtime for the given fleet directory and object
// registry. dir may be nil if the directory isn't known yet — a
// locality process typically starts serving RPCs before it has
// registered with the bootstrap directory service and learned the
// finalized peer set; call SetDirectory once it arrives. reg must not
// be nil: ServeHTTP consults it, via registry.Registry.Lookup, to
// distinguish "no such distributed map on this locality" from "map
// exists but has no handler for this opcode."
func New(dir *locality.Directory, reg *registry.Registry) *Runtime {
	return &Runtime{
		dir:      dir,
		reg:      reg,
		handlers: make(map[registry.GlobalID]map[string]Handler),
	}
}

// SetDirectory installs the fleet directory outbound calls resolve
// locality IDs against. It is not safe to call concurrently with
// outbound calls that are already in flight.
func (rt *Runtime) SetDirectory(dir *locality.Directory) {
	rt.dir = dir
}

// RegisterHandler binds opcode, for the object named by id, to h. It is
// called once per (id, opcode) by dmap.Create, closed over the concrete
// *shard.Shard[K,V] so the Runtime itself never has to know K or V.
func (rt *Runtime) RegisterHandler(id registry.GlobalID, opcode string, h Handler) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	byOpcode, ok := rt.handlers[id]
	if !ok {
		byOpcode = make(map[string]Handler)
		rt.handlers[id] = byOpcode
	}
	byOpcode[opcode] = h
}

// Deregister removes every handler registered for id, mirroring
// registry.Registry.Deregister at Map.Close.
func (rt *Runtime) Deregister(id registry.GlobalID) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.handlers, id)
}

func (rt *Runtime) lookup(id registry.GlobalID, opcode string) (Handler, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	byOpcode, ok := rt.handlers[id]
	if !ok {
		return nil, false
	}
	h, ok := byOpcode[opcode]
	return h, ok
}

// ServeHTTP implements the inbound half of the wire protocol:
// POST /rpc/{globalID}/{opcode}.
func (rt *Runtime) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/rpc/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		http.Error(w, "bad path, want /rpc/{globalID}/{opcode}", http.StatusBadRequest)
		return
	}
	var id registry.GlobalID
	if err := json.Unmarshal([]byte(`"`+parts[0]+`"`), &id); err != nil {
		http.Error(w, "bad globalID", http.StatusBadRequest)
		return
	}
	opcode := parts[1]

	if _, ok := rt.reg.Lookup(id); !ok {
		http.Error(w, fmt.Sprintf("no distributed map registered for %s", id), http.StatusNotFound)
		return
	}
	handler, ok := rt.lookup(id, opcode)
	if !ok {
		http.Error(w, fmt.Sprintf("no handler for %s/%s", id, opcode), http.StatusNotFound)
		return
	}

	body, err := readAll(r)
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := handler(r.Context(), body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_, _ = w.Write(out)
}

func readAll(r *http.Request) (json.RawMessage, error) {
	if r.Body == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, nil
	}
	return json.RawMessage(buf.Bytes()), nil
}

// ExecuteAt performs opcode against id on targetLocality, synchronously,
// discarding any response body. Callers with a target on this same
// locality should call the local shard directly rather than route
// through Runtime; ExecuteAt always makes a real network call.
func (rt *Runtime) ExecuteAt(ctx context.Context, targetLocality int, id registry.GlobalID, opcode string, body any) error {
	return rt.ExecuteAtWithRet(ctx, targetLocality, id, opcode, body, nil)
}

// ExecuteAtWithRet performs opcode against id on targetLocality and
// decodes the response into out (which may be nil to discard it).
func (rt *Runtime) ExecuteAtWithRet(ctx context.Context, targetLocality int, id registry.GlobalID, opcode string, body any, out any) error {
	target, ok := rt.dir.At(targetLocality)
	if !ok {
		return fmt.Errorf("rpc: no locality with id %d", targetLocality)
	}
	url := fmt.Sprintf("%s/rpc/%s/%s", target.Addr, id, opcode)
	return postJSON(ctx, url, body, out)
}

// AsyncExecuteAt performs ExecuteAt on a new goroutine grouped under h.
func (rt *Runtime) AsyncExecuteAt(h *handle.Handle, targetLocality int, id registry.GlobalID, opcode string, body any) {
	h.Go(func() error {
		return rt.ExecuteAt(context.Background(), targetLocality, id, opcode, body)
	})
}

// AsyncExecuteAtWithRet performs ExecuteAtWithRet on a new goroutine
// grouped under h. out must not be read until h.Wait() returns.
func (rt *Runtime) AsyncExecuteAtWithRet(h *handle.Handle, targetLocality int, id registry.GlobalID, opcode string, body any, out any) {
	h.Go(func() error {
		return rt.ExecuteAtWithRet(context.Background(), targetLocality, id, opcode, body, out)
	})
}

// ExecuteOnAll performs opcode against id on every locality in
// targets, in parallel, waiting for all of them and joining any errors.
// It is the collective-broadcast counterpart to ExecuteAt. internal/dmap
// does not call it: its fleet-wide operations issue one ExecuteAt per
// locality under their own handle.
func (rt *Runtime) ExecuteOnAll(ctx context.Context, targets []int, id registry.GlobalID, opcode string, body any) error {
	h := handle.New()
	rt.AsyncExecuteOnAll(h, targets, id, opcode, body)
	return h.Wait()
}

// AsyncExecuteOnAll fans ExecuteAt out across targets, one goroutine
// each, all grouped under h.
func (rt *Runtime) AsyncExecuteOnAll(h *handle.Handle, targets []int, id registry.GlobalID, opcode string, body any) {
	for _, t := range targets {
		rt.AsyncExecuteAt(h, t, id, opcode, body)
	}
}

// ForEachAt performs the "foreach" opcode against id on targetLocality
// and decodes any response body into out. The foreach handler
// internal/dmap registers returns no body, so out is left untouched for
// it; dmap.Map.ForEachEntry/ForEachKey send the opcode through ExecuteAt
// rather than this method.
func (rt *Runtime) ForEachAt(ctx context.Context, targetLocality int, id registry.GlobalID, body any, out any) error {
	return rt.ExecuteAtWithRet(ctx, targetLocality, id, "foreach", body, out)
}

// AsyncForEachAt performs ForEachAt on a new goroutine grouped under h.
func (rt *Runtime) AsyncForEachAt(h *handle.Handle, targetLocality int, id registry.GlobalID, body any, out any) {
	h.Go(func() error {
		return rt.ForEachAt(context.Background(), targetLocality, id, body, out)
	})
}

func postJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("rpc: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("rpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc: %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("rpc: %s: http %d", url, resp.StatusCode)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
