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
	"sync"

	"go.uber.org/atomic"

	"github.com/troupe-io/troupe/internal/queue"
	"github.com/troupe-io/troupe/internal/types"
)

// priority is the envelope class. Control envelopes overtake ordinary
// ones; within a class delivery is strictly FIFO.
type priority int

const (
	ordinaryPriority priority = iota
	controlPriority
)

// store is the per-class envelope storage of the mailbox. All calls
// happen under the mailbox mutex.
type store interface {
	offer(rctx *ReceiveContext) bool
	poll() (*ReceiveContext, bool)
	len() int64
	dispose()
}

// unboundedStore never refuses an offer.
type unboundedStore struct {
	underlying *queue.MpscQueue[*ReceiveContext]
}

func newUnboundedStore() *unboundedStore {
	return &unboundedStore{underlying: queue.NewMpscQueue[*ReceiveContext]()}
}

func (s *unboundedStore) offer(rctx *ReceiveContext) bool {
	s.underlying.Push(rctx)
	return true
}

func (s *unboundedStore) poll() (*ReceiveContext, bool) { return s.underlying.Pop() }
func (s *unboundedStore) len() int64                    { return s.underlying.Len() }
func (s *unboundedStore) dispose()                      {}

// boundedStore refuses offers at capacity.
type boundedStore struct {
	underlying *queue.Ring[*ReceiveContext]
}

func newBoundedStore(capacity int) *boundedStore {
	return &boundedStore{underlying: queue.NewRing[*ReceiveContext](capacity)}
}

func (s *boundedStore) offer(rctx *ReceiveContext) bool { return s.underlying.Offer(rctx) }
func (s *boundedStore) poll() (*ReceiveContext, bool)   { return s.underlying.Poll() }
func (s *boundedStore) len() int64                      { return s.underlying.Len() }
func (s *boundedStore) dispose()                        { s.underlying.Dispose() }

// waitingSender is a producer suspended on a full mailbox. Its done
// channel resolves nil once the envelope has been enqueued, or an error
// when the mailbox closed first.
type waitingSender struct {
	rctx *ReceiveContext
	done chan error
}

// mailbox is the per-actor message queue plus liveness bookkeeping.
//
// Many producers send concurrently through cloned addresses; exactly one
// consumer (the manager loop) dequeues. Backpressure among suspended
// senders is FIFO fair: waiters resume in wait-start order, and a new
// sender never barges past an already-waiting one even when its own
// class has room.
//
// strongRefs counts the live strong addresses. The decrement-to-zero
// transition closes the mailbox exactly once; already-queued envelopes
// still drain, new sends fail with ErrDisconnected.
type mailbox struct {
	mu       sync.Mutex
	control  store
	ordinary store
	waiters  []*waitingSender
	closed   bool

	// cap-1 wakeup channel for the single consumer
	recvSig chan types.Unit

	strongRefs *atomic.Int64
	capacity   int
}

// newMailbox creates a mailbox. A non-positive capacity means unbounded;
// otherwise each class is independently bounded at the given capacity.
func newMailbox(capacity int) *mailbox {
	mb := &mailbox{
		recvSig:    make(chan types.Unit, 1),
		strongRefs: atomic.NewInt64(0),
		capacity:   capacity,
	}
	if capacity > 0 {
		mb.control = newBoundedStore(capacity)
		mb.ordinary = newBoundedStore(capacity)
		return mb
	}
	mb.control = newUnboundedStore()
	mb.ordinary = newUnboundedStore()
	return mb
}

func (x *mailbox) storeFor(class priority) store {
	if class == controlPriority {
		return x.control
	}
	return x.ordinary
}

// enqueue is the suspending send path. When the target class is at
// capacity, or other senders are already waiting, the caller suspends
// until the envelope is admitted, the mailbox closes, or ctx ends.
func (x *mailbox) enqueue(ctx context.Context, rctx *ReceiveContext) error {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return ErrDisconnected
	}
	if len(x.waiters) == 0 && x.storeFor(rctx.class).offer(rctx) {
		x.mu.Unlock()
		x.signalReceiver()
		return nil
	}
	w := &waitingSender{rctx: rctx, done: make(chan error, 1)}
	x.waiters = append(x.waiters, w)
	x.mu.Unlock()

	select {
	case err := <-w.done:
		return err
	case <-ctx.Done():
		x.mu.Lock()
		// the waiter may have been admitted between ctx.Done firing and
		// the lock being acquired
		select {
		case err := <-w.done:
			x.mu.Unlock()
			return err
		default:
		}
		x.removeWaiterLocked(w)
		x.mu.Unlock()
		return ctx.Err()
	}
}

// tryEnqueue is the fail-fast send path. It refuses with ErrMailboxFull
// whenever admitting the envelope now would overtake a waiting sender or
// exceed the class capacity.
func (x *mailbox) tryEnqueue(rctx *ReceiveContext) error {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return ErrDisconnected
	}
	if len(x.waiters) > 0 || !x.storeFor(rctx.class).offer(rctx) {
		x.mu.Unlock()
		return ErrMailboxFull
	}
	x.mu.Unlock()
	x.signalReceiver()
	return nil
}

// dequeue pulls the next envelope, control class first, FIFO within each
// class. It suspends while the mailbox is empty and returns
// ErrDisconnected once the mailbox is closed and fully drained.
// Single consumer only.
func (x *mailbox) dequeue(ctx context.Context) (*ReceiveContext, error) {
	for {
		x.mu.Lock()
		if rctx, ok := x.pollLocked(); ok {
			x.promoteLocked()
			x.mu.Unlock()
			return rctx, nil
		}
		if x.closed {
			x.mu.Unlock()
			return nil, ErrDisconnected
		}
		x.mu.Unlock()

		select {
		case <-x.recvSig:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (x *mailbox) pollLocked() (*ReceiveContext, bool) {
	if rctx, ok := x.control.poll(); ok {
		return rctx, true
	}
	return x.ordinary.poll()
}

// promoteLocked admits waiting senders into the freed storage, strictly
// in wait-start order. Promotion stops at the first waiter whose class
// is still full, even when a later waiter of the other class would fit;
// anything else would let slow classes starve early waiters.
func (x *mailbox) promoteLocked() {
	for len(x.waiters) > 0 {
		w := x.waiters[0]
		if !x.storeFor(w.rctx.class).offer(w.rctx) {
			return
		}
		x.waiters[0] = nil
		x.waiters = x.waiters[1:]
		w.done <- nil
	}
}

func (x *mailbox) removeWaiterLocked(target *waitingSender) {
	for i, w := range x.waiters {
		if w == target {
			x.waiters = append(x.waiters[:i], x.waiters[i+1:]...)
			return
		}
	}
}

// close marks the mailbox closed, fails every suspended sender with
// ErrDisconnected and wakes the consumer. Idempotent. Already-queued
// envelopes are not discarded; they drain through dequeue.
func (x *mailbox) close() {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}
	x.closed = true
	waiters := x.waiters
	x.waiters = nil
	x.mu.Unlock()

	for _, w := range waiters {
		w.done <- ErrDisconnected
	}
	x.signalReceiver()
}

// drain pops every remaining envelope and hands it to fn. Used by the
// manager after its loop exits; the mailbox must already be closed.
func (x *mailbox) drain(fn func(*ReceiveContext)) {
	for {
		x.mu.Lock()
		rctx, ok := x.pollLocked()
		x.mu.Unlock()
		if !ok {
			return
		}
		fn(rctx)
	}
}

// dispose releases the underlying storage. Must only run after drain.
func (x *mailbox) dispose() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.control.dispose()
	x.ordinary.dispose()
}

func (x *mailbox) signalReceiver() {
	select {
	case x.recvSig <- types.Unit{}:
	default:
	}
}

// isClosed reports whether the mailbox refuses new envelopes.
func (x *mailbox) isClosed() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.closed
}

// size returns a point-in-time count of queued envelopes across both
// classes, excluding suspended senders.
func (x *mailbox) size() int64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.control.len() + x.ordinary.len()
}

// incStrongRefs registers a new strong address.
func (x *mailbox) incStrongRefs() {
	x.strongRefs.Inc()
}

// decStrongRefs drops a strong address; the transition to zero closes
// the mailbox exactly once.
func (x *mailbox) decStrongRefs() {
	if x.strongRefs.Dec() == 0 {
		x.close()
	}
}

// tryIncStrongRefs attempts to register a strong address on behalf of a
// weak upgrade. It fails once the strong count has reached zero.
func (x *mailbox) tryIncStrongRefs() bool {
	for {
		refs := x.strongRefs.Load()
		if refs == 0 {
			return false
		}
		if x.strongRefs.CompareAndSwap(refs, refs+1) {
			return true
		}
	}
}
