/*
 * MIT License
 *
 * Copyright (c) 2024-2026 Troupe Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func makeEnvelope(message any, class priority) *ReceiveContext {
	return getContext().build(context.TODO(), nil, message, class, nil)
}

func waiterCount(mb *mailbox) int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.waiters)
}

func TestMailboxControlOvertakesOrdinary(t *testing.T) {
	mb := newMailbox(0)
	mb.incStrongRefs()

	ctx := context.TODO()
	require.NoError(t, mb.enqueue(ctx, makeEnvelope("o1", ordinaryPriority)))
	require.NoError(t, mb.enqueue(ctx, makeEnvelope("o2", ordinaryPriority)))
	require.NoError(t, mb.enqueue(ctx, makeEnvelope("c1", controlPriority)))
	require.NoError(t, mb.enqueue(ctx, makeEnvelope("c2", controlPriority)))
	require.NoError(t, mb.enqueue(ctx, makeEnvelope("o3", ordinaryPriority)))

	var order []string
	for n := 0; n < 5; n++ {
		rctx, err := mb.dequeue(ctx)
		require.NoError(t, err)
		order = append(order, rctx.message.(string))
		releaseContext(rctx)
	}
	// control class first, FIFO within each class
	assert.Equal(t, []string{"c1", "c2", "o1", "o2", "o3"}, order)
}

func TestUnboundedEnqueueNeverSuspends(t *testing.T) {
	mb := newMailbox(0)
	mb.incStrongRefs()

	ctx := context.TODO()
	for i := 0; i < 10_000; i++ {
		require.NoError(t, mb.enqueue(ctx, makeEnvelope(i, ordinaryPriority)))
	}
	assert.EqualValues(t, 10_000, mb.size())
	assert.Zero(t, waiterCount(mb))
}

func TestBoundedEnqueueSuspendsUntilSlotFrees(t *testing.T) {
	mb := newMailbox(1)
	mb.incStrongRefs()
	ctx := context.TODO()

	require.NoError(t, mb.enqueue(ctx, makeEnvelope("first", ordinaryPriority)))

	delivered := make(chan error, 1)
	go func() {
		delivered <- mb.enqueue(ctx, makeEnvelope("second", ordinaryPriority))
	}()

	// the second sender must be suspended, not failed
	assert.Eventually(t, func() bool { return waiterCount(mb) == 1 }, time.Second, 5*time.Millisecond)
	select {
	case err := <-delivered:
		t.Fatalf("second enqueue returned early: %v", err)
	default:
	}

	rctx, err := mb.dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", rctx.message)
	releaseContext(rctx)

	require.NoError(t, <-delivered)
	rctx, err = mb.dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", rctx.message)
	releaseContext(rctx)
}

func TestBackpressureWakesLongestWaiter(t *testing.T) {
	mb := newMailbox(1)
	mb.incStrongRefs()
	ctx := context.TODO()

	require.NoError(t, mb.enqueue(ctx, makeEnvelope("seed", ordinaryPriority)))

	resumed := make(chan string, 3)
	// suspend three senders with a known wait-start order
	for _, name := range []string{"a", "b", "c"} {
		waiting := waiterCount(mb)
		go func(name string) {
			if err := mb.enqueue(ctx, makeEnvelope(name, ordinaryPriority)); err == nil {
				resumed <- name
			}
		}(name)
		require.Eventually(t, func() bool {
			return waiterCount(mb) == waiting+1
		}, time.Second, time.Millisecond)
	}

	// each freed slot must resume the longest waiter
	for _, expected := range []string{"a", "b", "c"} {
		rctx, err := mb.dequeue(ctx)
		require.NoError(t, err)
		releaseContext(rctx)
		assert.Equal(t, expected, <-resumed)
	}
}

func TestNewSenderDoesNotBargePastWaiters(t *testing.T) {
	mb := newMailbox(1)
	mb.incStrongRefs()
	ctx := context.TODO()

	require.NoError(t, mb.enqueue(ctx, makeEnvelope("seed", ordinaryPriority)))

	go func() {
		_ = mb.enqueue(ctx, makeEnvelope("waiter", ordinaryPriority))
	}()
	require.Eventually(t, func() bool { return waiterCount(mb) == 1 }, time.Second, time.Millisecond)

	// fail-fast path must refuse while a sender is waiting
	err := mb.tryEnqueue(makeEnvelope("barger", ordinaryPriority))
	assert.ErrorIs(t, err, ErrMailboxFull)

	rctx, err := mb.dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seed", rctx.message)
	releaseContext(rctx)

	rctx, err = mb.dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "waiter", rctx.message)
	releaseContext(rctx)
}

func TestTryEnqueueFailsFastWhenFull(t *testing.T) {
	mb := newMailbox(1)
	mb.incStrongRefs()

	require.NoError(t, mb.tryEnqueue(makeEnvelope("first", ordinaryPriority)))
	assert.ErrorIs(t, mb.tryEnqueue(makeEnvelope("second", ordinaryPriority)), ErrMailboxFull)
	// each class is bounded independently
	require.NoError(t, mb.tryEnqueue(makeEnvelope("control", controlPriority)))
}

func TestCloseFailsWaitingSenders(t *testing.T) {
	mb := newMailbox(1)
	mb.incStrongRefs()
	ctx := context.TODO()

	require.NoError(t, mb.enqueue(ctx, makeEnvelope("seed", ordinaryPriority)))

	failed := make(chan error, 1)
	go func() {
		failed <- mb.enqueue(ctx, makeEnvelope("late", ordinaryPriority))
	}()
	require.Eventually(t, func() bool { return waiterCount(mb) == 1 }, time.Second, time.Millisecond)

	mb.close()
	assert.ErrorIs(t, <-failed, ErrDisconnected)

	// close refuses new envelopes on every path
	assert.ErrorIs(t, mb.enqueue(ctx, makeEnvelope("x", ordinaryPriority)), ErrDisconnected)
	assert.ErrorIs(t, mb.tryEnqueue(makeEnvelope("y", ordinaryPriority)), ErrDisconnected)

	// queued envelopes still drain after close
	rctx, err := mb.dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seed", rctx.message)
	releaseContext(rctx)

	_, err = mb.dequeue(ctx)
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestCloseIsIdempotent(t *testing.T) {
	mb := newMailbox(0)
	mb.incStrongRefs()
	mb.close()
	assert.NotPanics(t, mb.close)
}

func TestEnqueueContextCancellationRemovesWaiter(t *testing.T) {
	mb := newMailbox(1)
	mb.incStrongRefs()

	require.NoError(t, mb.enqueue(context.TODO(), makeEnvelope("seed", ordinaryPriority)))

	ctx, cancel := context.WithCancel(context.TODO())
	result := make(chan error, 1)
	go func() {
		result <- mb.enqueue(ctx, makeEnvelope("cancelled", ordinaryPriority))
	}()
	require.Eventually(t, func() bool { return waiterCount(mb) == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)
	assert.Zero(t, waiterCount(mb))
}

func TestDecStrongRefsClosesExactlyOnce(t *testing.T) {
	mb := newMailbox(0)
	for n := 0; n < 3; n++ {
		mb.incStrongRefs()
	}

	mb.decStrongRefs()
	mb.decStrongRefs()
	assert.False(t, mb.isClosed())

	mb.decStrongRefs()
	assert.True(t, mb.isClosed())
}

func TestTryIncStrongRefsFailsAtZero(t *testing.T) {
	mb := newMailbox(0)
	mb.incStrongRefs()
	require.True(t, mb.tryIncStrongRefs())

	mb.decStrongRefs()
	mb.decStrongRefs()
	assert.False(t, mb.tryIncStrongRefs())
}

func TestDrainHandsOverRemainingEnvelopes(t *testing.T) {
	mb := newMailbox(0)
	mb.incStrongRefs()
	ctx := context.TODO()

	require.NoError(t, mb.enqueue(ctx, makeEnvelope("a", ordinaryPriority)))
	require.NoError(t, mb.enqueue(ctx, makeEnvelope("b", controlPriority)))
	mb.close()

	drained := atomic.NewInt64(0)
	mb.drain(func(rctx *ReceiveContext) {
		drained.Inc()
		releaseContext(rctx)
	})
	assert.EqualValues(t, 2, drained.Load())
	assert.Zero(t, mb.size())
}
