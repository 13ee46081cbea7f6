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

package queue

import (
	gods "github.com/Workiva/go-datastructures/queue"
)

// Ring is a bounded FIFO queue backed by a ring buffer.
//
// Offer never blocks: it reports false when the queue is at capacity.
// The underlying ring rounds its size up to a power of two, so the
// requested capacity is enforced here; producers must serialize their
// Offer calls for the bound to be exact. Poll must only be called from
// a single consumer goroutine.
type Ring[T any] struct {
	underlying *gods.RingBuffer
	capacity   int64
}

// NewRing creates a bounded ring queue with the given capacity.
// Capacity must be a positive integer.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{
		underlying: gods.NewRingBuffer(uint64(capacity)),
		capacity:   int64(capacity),
	}
}

// Offer inserts the given value when space is available and reports
// whether the insertion happened.
func (r *Ring[T]) Offer(value T) bool {
	if int64(r.underlying.Len()) >= r.capacity {
		return false
	}
	ok, err := r.underlying.Offer(value)
	return ok && err == nil
}

// Poll removes and returns the value at the front of the queue.
// Returns false when the queue is empty. Single consumer only.
func (r *Ring[T]) Poll() (T, bool) {
	var zero T
	if r.underlying.Len() == 0 {
		return zero, false
	}
	item, err := r.underlying.Get()
	if err != nil {
		return zero, false
	}
	value, ok := item.(T)
	return value, ok
}

// Len returns the current number of queued values.
func (r *Ring[T]) Len() int64 {
	return int64(r.underlying.Len())
}

// Cap returns the fixed capacity of the queue.
func (r *Ring[T]) Cap() int64 {
	return r.capacity
}

// Dispose releases the underlying buffer and unblocks its internal
// waiters. The queue must not be used afterwards.
func (r *Ring[T]) Dispose() {
	r.underlying.Dispose()
}
