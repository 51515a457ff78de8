package dmap

import (
	"context"

	"github.com/fernglade/dishmap/internal/buffer"
	"github.com/fernglade/dishmap/internal/handle"
)

// Insert stores v under k, on whichever locality owns k, applying that
// locality's InsertPolicy. It returns ErrRejected if the policy
// declined the write.
func (m *Map[K, V]) Insert(k K, v V) error {
	owner := m.router.Owner(k)
	if owner == m.dir.SelfID() {
		if !m.shard.Insert(k, v) {
			return ErrRejected
		}
		return nil
	}
	var resp insertResponse
	req := insertRequest[K, V]{Key: k, Value: v}
	if err := m.rt.ExecuteAtWithRet(context.Background(), owner, m.id, opInsert, req, &resp); err != nil {
		return err
	}
	if !resp.Stored {
		return ErrRejected
	}
	return nil
}

// AsyncInsert performs Insert on a new goroutine grouped under h.
func (m *Map[K, V]) AsyncInsert(h *handle.Handle, k K, v V) {
	h.Go(func() error { return m.Insert(k, v) })
}

// Erase removes k, on whichever locality owns it. It is a no-op if k is
// absent there.
func (m *Map[K, V]) Erase(k K) error {
	owner := m.router.Owner(k)
	if owner == m.dir.SelfID() {
		m.shard.Erase(k)
		return nil
	}
	return m.rt.ExecuteAt(context.Background(), owner, m.id, opErase, eraseRequest[K]{Key: k})
}

// AsyncErase performs Erase on a new goroutine grouped under h.
func (m *Map[K, V]) AsyncErase(h *handle.Handle, k K) {
	h.Go(func() error { return m.Erase(k) })
}

// BufferedInsert queues (k, v) for shipment to the owning locality
// instead of sending it immediately: local-owned keys still go straight
// to the local shard, since a locality never buffers entries destined
// for itself. Queuing may trigger an automatic flush of the
// destination's buffer once it crosses its threshold.
func (m *Map[K, V]) BufferedInsert(k K, v V) error {
	owner := m.router.Owner(k)
	if owner == m.dir.SelfID() {
		m.shard.Insert(k, v)
		return nil
	}
	if shouldFlush := m.buf.Append(owner, buffer.Entry[K, V]{Key: k, Value: v}); shouldFlush {
		return m.flushDest(context.Background(), owner)
	}
	return nil
}

// BufferedAsyncInsert performs BufferedInsert on a new goroutine
// grouped under h.
func (m *Map[K, V]) BufferedAsyncInsert(h *handle.Handle, k K, v V) {
	h.Go(func() error { return m.BufferedInsert(k, v) })
}

// WaitForBufferedInsert instructs every locality to flush every one of
// its outbound buffers and blocks until all resulting shipments have
// completed, surfacing a joined error for any that failed. It is
// collective: BufferedInsert calls made on any locality since the last
// flush are not guaranteed visible to a reader until this returns,
// matching rt::executeOnAll(flushLambda_, oid_) in the original
// hashmap's WaitForBufferedInsert.
func (m *Map[K, V]) WaitForBufferedInsert() error {
	h := handle.New()
	h.Go(func() error { return m.flushLocalOutbound(context.Background()) })
	for _, loc := range m.dir.All() {
		if m.dir.IsSelf(loc.ID) {
			continue
		}
		loc := loc
		h.Go(func() error { return m.rt.ExecuteAt(context.Background(), loc.ID, m.id, opFlushOutbound, nil) })
	}
	return h.Wait()
}

// flushLocalOutbound flushes this locality's own outbound buffers to
// every destination holding queued entries and waits for the shipments
// to land.
func (m *Map[K, V]) flushLocalOutbound(ctx context.Context) error {
	h := handle.New()
	for dest, entries := range m.buf.FlushAll() {
		dest, entries := dest, entries
		h.Go(func() error { return m.shipBatch(ctx, dest, entries) })
	}
	return h.Wait()
}

func (m *Map[K, V]) flushDest(ctx context.Context, dest int) error {
	entries := m.buf.Flush(dest)
	if len(entries) == 0 {
		return nil
	}
	return m.shipBatch(ctx, dest, entries)
}

func (m *Map[K, V]) shipBatch(ctx context.Context, dest int, entries []buffer.Entry[K, V]) error {
	return m.rt.ExecuteAt(ctx, dest, m.id, opBufferFlush, bufferFlushRequest[K, V]{Entries: entries})
}
