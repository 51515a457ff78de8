package dmap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fernglade/dishmap/internal/applyfn"
	"github.com/fernglade/dishmap/internal/buffer"
)

// Opcodes named by the wire protocol: one HTTP endpoint per
// (GlobalID, opcode), dispatched by internal/rpc.Runtime.ServeHTTP.
const (
	opInsert        = "insert"
	opErase         = "erase"
	opLookup        = "lookup"
	opApply         = "apply"
	opForEach       = "foreach"
	opClear         = "clear"
	opSize          = "size"
	opBufferFlush   = "bufferflush"
	opPrintAll      = "printall"
	opFlushOutbound = "flushoutbound"
)

type insertRequest[K comparable, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

type insertResponse struct {
	Stored bool `json:"stored"`
}

type eraseRequest[K comparable] struct {
	Key K `json:"key"`
}

type lookupRequest[K comparable] struct {
	Key K `json:"key"`
}

type lookupResponse[V any] struct {
	Value V    `json:"value"`
	Found bool `json:"found"`
}

type applyRequest[K comparable] struct {
	Key      K               `json:"key"`
	FuncName string          `json:"func_name"`
	Args     json.RawMessage `json:"args"`
}

type foreachRequest struct {
	Kind     string          `json:"kind"` // "entry" or "key"
	FuncName string          `json:"func_name"`
	Args     json.RawMessage `json:"args"`
}

type sizeResponse struct {
	Size int `json:"size"`
}

type bufferFlushRequest[K comparable, V any] struct {
	Entries []buffer.Entry[K, V] `json:"entries"`
}

// registerHandlers binds every opcode this Map answers to, closing
// each handler over m's concrete K/V so internal/rpc.Runtime never has
// to know them.
func registerHandlers[K comparable, V any](m *Map[K, V]) {
	m.rt.RegisterHandler(m.id, opInsert, func(_ context.Context, body json.RawMessage) (json.RawMessage, error) {
		var req insertRequest[K, V]
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		stored := m.shard.Insert(req.Key, req.Value)
		return json.Marshal(insertResponse{Stored: stored})
	})

	m.rt.RegisterHandler(m.id, opErase, func(_ context.Context, body json.RawMessage) (json.RawMessage, error) {
		var req eraseRequest[K]
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		m.shard.Erase(req.Key)
		return nil, nil
	})

	m.rt.RegisterHandler(m.id, opLookup, func(_ context.Context, body json.RawMessage) (json.RawMessage, error) {
		var req lookupRequest[K]
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		v, ok := m.shard.Lookup(req.Key)
		return json.Marshal(lookupResponse[V]{Value: v, Found: ok})
	})

	m.rt.RegisterHandler(m.id, opApply, func(_ context.Context, body json.RawMessage) (json.RawMessage, error) {
		var req applyRequest[K]
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		err := m.shard.Apply(req.Key, func(v *V) error {
			return applyfn.InvokeApply[V](req.FuncName, v, req.Args)
		})
		return nil, err
	})

	m.rt.RegisterHandler(m.id, opForEach, func(_ context.Context, body json.RawMessage) (json.RawMessage, error) {
		var req foreachRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		switch req.Kind {
		case "entry":
			return nil, m.shard.ForEachEntry(func(k K, v *V) error {
				return applyfn.InvokeForEachEntry[K, V](req.FuncName, k, v, req.Args)
			})
		case "key":
			return nil, m.shard.ForEachKey(func(k K) error {
				return applyfn.InvokeForEachKey[K](req.FuncName, k, req.Args)
			})
		default:
			return nil, fmt.Errorf("dmap: unknown foreach kind %q", req.Kind)
		}
	})

	m.rt.RegisterHandler(m.id, opClear, func(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
		m.shard.Clear()
		return nil, nil
	})

	m.rt.RegisterHandler(m.id, opSize, func(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
		return json.Marshal(sizeResponse{Size: m.shard.Size()})
	})

	m.rt.RegisterHandler(m.id, opBufferFlush, func(_ context.Context, body json.RawMessage) (json.RawMessage, error) {
		var req bufferFlushRequest[K, V]
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		for _, e := range req.Entries {
			m.shard.Insert(e.Key, e.Value)
		}
		return nil, nil
	})

	m.rt.RegisterHandler(m.id, opPrintAll, func(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
		m.printLocalEntries()
		return nil, nil
	})

	m.rt.RegisterHandler(m.id, opFlushOutbound, func(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
		return nil, m.flushLocalOutbound(ctx)
	})
}
