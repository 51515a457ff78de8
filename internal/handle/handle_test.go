package handle

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleWaitBlocksUntilZero(t *testing.T) {
	h := New()
	var completed int32

	const n = 50
	for i := 0; i < n; i++ {
		h.Go(func() error {
			atomic.AddInt32(&completed, 1)
			return nil
		})
	}

	require.NoError(t, h.Wait())
	assert.EqualValues(t, n, atomic.LoadInt32(&completed))
}

func TestHandleWaitJoinsErrors(t *testing.T) {
	h := New()
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	h.Go(func() error { return errA })
	h.Go(func() error { return nil })
	h.Go(func() error { return errB })

	err := h.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestHandleReusableAfterWait(t *testing.T) {
	h := New()
	h.Go(func() error { return errors.New("first batch") })
	require.Error(t, h.Wait())

	h.Go(func() error { return nil })
	assert.NoError(t, h.Wait(), "errors should not leak across Wait calls")
}

func TestHandleAddDone(t *testing.T) {
	h := New()
	h.Add(2)
	go h.Done(nil)
	go h.Done(errors.New("boom"))

	require.Error(t, h.Wait())
}
