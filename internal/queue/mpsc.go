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
	"sync/atomic"
)

// node is a single link of the MPSC queue.
type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
}

// MpscQueue is a Multi-Producer-Single-Consumer FIFO queue.
// reference: https://concurrencyfreaks.blogspot.com/2014/04/multi-producer-single-consumer-queue.html
//
// Many goroutines may Push concurrently; exactly one goroutine must Pop.
type MpscQueue[T any] struct {
	head   atomic.Pointer[node[T]] // producers only
	tail   *node[T]                // consumer only
	length int64
}

// NewMpscQueue creates an instance of MpscQueue.
// The queue starts with a stub node so that producers can append
// by swapping head and linking through the previous node.
func NewMpscQueue[T any]() *MpscQueue[T] {
	stub := new(node[T])
	q := new(MpscQueue[T])
	q.head.Store(stub)
	q.tail = stub
	return q
}

// Push places the given value at the back of the queue.
// Never blocks and is safe for concurrent producers.
func (q *MpscQueue[T]) Push(value T) {
	n := &node[T]{value: value}
	prev := q.head.Swap(n)
	prev.next.Store(n)
	atomic.AddInt64(&q.length, 1)
}

// Pop takes the value at the front of the queue.
// Returns false when the queue is empty. Must be called from the
// single consumer goroutine only.
func (q *MpscQueue[T]) Pop() (T, bool) {
	var zero T
	next := q.tail.next.Load()
	if next == nil {
		return zero, false
	}

	q.tail = next
	value := next.value
	next.value = zero
	atomic.AddInt64(&q.length, -1)
	return value, true
}

// Len returns a snapshot of the queue length. The value may be
// approximate under concurrent producers.
func (q *MpscQueue[T]) Len() int64 {
	return atomic.LoadInt64(&q.length)
}

// IsEmpty returns true when the queue holds no value. Like Pop it is
// only meaningful from the consumer goroutine.
func (q *MpscQueue[T]) IsEmpty() bool {
	return q.tail.next.Load() == nil
}
