package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestS3BlockModePreservesEnqueueOrderUnderTightPermits implements spec
// scenario S3: with permits=1 and strategy=Block, three items submitted in
// quick succession are all eventually processed and observed in submission
// order, with pending never exceeding the permit cap.
func TestS3BlockModePreservesEnqueueOrderUnderTightPermits(t *testing.T) {
	var mu sync.Mutex
	var order []int
	var maxPending int64

	p := New(Config{Permits: 1, Strategy: Block}, 1, zaptest.NewLogger(t), func(item any) {
		mu.Lock()
		order = append(order, item.(int))
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, 1)
	defer p.Stop()

	for i := 0; i < 3; i++ {
		p.Submit(i)
		if pending := p.Pending(); pending > maxPending {
			maxPending = pending
		}
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.LessOrEqual(t, maxPending, int64(1), "P7: pending must never exceed the permit cap")
}

// TestP7BlockModeNeverExceedsPermitCap implements P7: in Block mode with
// permit cap P, the sum of queued+in-flight items observed at any instant
// submission records never exceeds P.
func TestP7BlockModeNeverExceedsPermitCap(t *testing.T) {
	const permits = 4
	release := make(chan struct{})
	var inFlight atomic.Int64
	var maxObserved atomic.Int64

	p := New(Config{Permits: permits, Strategy: Block}, permits, zaptest.NewLogger(t), func(item any) {
		n := inFlight.Add(1)
		for {
			cur := maxObserved.Load()
			if n <= cur || maxObserved.CompareAndSwap(cur, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, permits)

	for i := 0; i < permits; i++ {
		p.Submit(i)
	}
	require.Eventually(t, func() bool { return inFlight.Load() == permits }, time.Second, time.Millisecond)

	assert.LessOrEqual(t, p.Pending(), int64(permits))
	close(release)
	p.Stop()

	assert.LessOrEqual(t, maxObserved.Load(), int64(permits))
}

// TestS4DropModeAccountsEveryRejection implements spec scenario S4 and
// property P8: with strategy=Drop and permits=1, a tight burst of 100
// submissions has dropped_events_count equal to the number rejected.
func TestS4DropModeAccountsEveryRejection(t *testing.T) {
	block := make(chan struct{})
	var processed atomic.Int64

	p := New(Config{Permits: 1, Strategy: Drop}, 0, zaptest.NewLogger(t), func(item any) {
		<-block
		processed.Add(1)
	})

	const attempts = 100
	for i := 0; i < attempts; i++ {
		p.Submit(i)
	}

	dropped := p.DroppedEvents()
	assert.Greater(t, dropped, uint64(0))
	assert.LessOrEqual(t, dropped, uint64(attempts-1))

	close(block)
	require.Eventually(t, func() bool { return processed.Load() > 0 }, time.Second, time.Millisecond)
}

// TestStopIsIdempotentAndDrainsInFlight verifies §4.8's stop semantics: a
// second Stop call is safe, and work already dispatched to a worker
// completes rather than being abandoned mid-callback.
func TestStopIsIdempotentAndDrainsInFlight(t *testing.T) {
	var started, done atomic.Bool
	p := New(Config{Permits: 10, Strategy: Block}, 2, zaptest.NewLogger(t), func(item any) {
		started.Store(true)
		time.Sleep(5 * time.Millisecond)
		done.Store(true)
	})
	ctx := context.Background()
	p.Start(ctx, 2)
	p.Submit(1)
	require.Eventually(t, started.Load, time.Second, time.Millisecond)

	p.Stop()
	p.Stop() // must not panic

	assert.True(t, done.Load())
}
