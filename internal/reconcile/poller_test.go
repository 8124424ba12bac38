package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/cart-sync/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReconciler struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingReconciler) Reconcile(context.Context) Result {
	n := c.calls.Add(1)
	if c.fail {
		return Result{Seq: uint64(n), SnapshotErr: errors.New("transport")}
	}
	return Result{Seq: uint64(n), SnapshotApplied: true, AggregateApplied: true}
}

func TestPoller_ReconcilesImmediatelyAndRepeats(t *testing.T) {
	r := &countingReconciler{}
	p := NewPoller(r, 10*time.Millisecond, logger.Discard())

	require.True(t, p.Start(context.Background()))
	defer p.Stop()

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestPoller_RearmsAfterFailure(t *testing.T) {
	r := &countingReconciler{fail: true}
	p := NewPoller(r, 10*time.Millisecond, logger.Discard())

	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestPoller_StopDisarms(t *testing.T) {
	r := &countingReconciler{}
	p := NewPoller(r, 5*time.Millisecond, logger.Discard())

	p.Start(context.Background())
	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, time.Second, time.Millisecond)
	p.Stop()
	assert.False(t, p.Running())

	stopped := r.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, r.calls.Load())
}

func TestPoller_DoubleStartIsIgnored(t *testing.T) {
	r := &countingReconciler{}
	p := NewPoller(r, time.Hour, logger.Discard())

	assert.True(t, p.Start(context.Background()))
	assert.False(t, p.Start(context.Background()))
	assert.True(t, p.Running())
	p.Stop()
}

func TestPoller_RestartAfterStop(t *testing.T) {
	r := &countingReconciler{}
	p := NewPoller(r, time.Hour, logger.Discard())

	p.Start(context.Background())
	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, time.Millisecond)
	p.Stop()

	assert.True(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return r.calls.Load() == 2 }, time.Second, time.Millisecond)
	p.Stop()
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := NewPoller(&countingReconciler{}, 0, nil)
	assert.NotPanics(t, p.Stop)
	assert.Equal(t, DefaultInterval, p.interval)
}

func TestPoller_ParentContextEndsLoop(t *testing.T) {
	r := &countingReconciler{}
	p := NewPoller(r, time.Hour, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	require.Eventually(t, func() bool { return !p.Running() }, time.Second, time.Millisecond)
}
