package throttle

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_RunsIdleAction(t *testing.T) {
	th := New(0)

	ran := false
	err := th.Guard("lookup:123", func() error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, th.Idle("lookup:123"))
}

func TestGuard_PropagatesOperationError(t *testing.T) {
	th := New(0)

	opErr := errors.New("backend down")
	err := th.Guard("process-payment", func() error { return opErr })

	assert.ErrorIs(t, err, opErr)
	// A failed attempt still releases the key for a retry.
	assert.True(t, th.Idle("process-payment"))
}

func TestGuard_SuppressesConcurrentInvocation(t *testing.T) {
	th := New(0)

	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = th.Guard("lookup:B", func() error {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := th.Guard("lookup:B", func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.ErrorIs(t, err, ErrInProgress)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGuard_CooldownWindowThenIdle(t *testing.T) {
	th := New(30 * time.Millisecond)

	require.NoError(t, th.Guard("approve", func() error { return nil }))

	// Immediately after completion the key is cooling down.
	err := th.Guard("approve", func() error { return nil })
	assert.ErrorIs(t, err, ErrInProgress)

	time.Sleep(60 * time.Millisecond)
	assert.True(t, th.Idle("approve"))
	assert.NoError(t, th.Guard("approve", func() error { return nil }))
}

func TestGuard_KeysAreIndependent(t *testing.T) {
	th := New(time.Minute)

	require.NoError(t, th.Guard("lookup:A", func() error { return nil }))

	// lookup:A is cooling down, a different barcode is unaffected.
	ran := false
	require.NoError(t, th.Guard("lookup:B", func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}
