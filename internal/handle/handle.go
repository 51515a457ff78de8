package handle

import (
	"errors"
	"sync"
)

// Handle groups a fleet of in-flight asynchronous operations so a single
// Wait observes all of them.
type Handle struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// New returns an empty Handle, ready to have work added to it.
func New() *Handle {
	return &Handle{}
}

// Add records n operations as dispatched but not yet complete. Pair every
// Add with an equal number of Done calls.
func (h *Handle) Add(n int) {
	h.wg.Add(n)
}

// Done records one dispatched operation as complete. err, if non-nil, is
// recorded and surfaced by the next Wait.
func (h *Handle) Done(err error) {
	if err != nil {
		h.mu.Lock()
		h.errs = append(h.errs, err)
		h.mu.Unlock()
	}
	h.wg.Done()
}

// Go dispatches fn in a new goroutine as one unit of work under h,
// recording its returned error via Done. It is the common case of
// Add(1) followed by a goroutine that calls Done — most async operations
// go through Go rather than calling Add/Done directly.
func (h *Handle) Go(fn func() error) {
	h.Add(1)
	go func() {
		h.Done(fn())
	}()
}

// Wait blocks until every operation dispatched under h has completed,
// then returns a joined error for any that failed (nil if all
// succeeded). Wait may be called more than once; subsequent calls
// observe only operations added after the previous Wait returned, since
// the underlying WaitGroup counter is back at zero.
func (h *Handle) Wait() error {
	h.wg.Wait()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.errs) == 0 {
		return nil
	}
	err := errors.Join(h.errs...)
	h.errs = nil
	return err
}
