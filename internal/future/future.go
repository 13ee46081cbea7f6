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

// Package future provides a one-shot promise used to carry the reply of
// a request/response exchange between goroutines.
package future

import (
	"context"

	"go.uber.org/atomic"

	"github.com/troupe-io/troupe/internal/types"
)

// Promise is a single-assignment container for a value or an error.
// Exactly one of Complete or Fail wins; subsequent calls are no-ops.
type Promise[T any] struct {
	done      chan types.Unit
	completed *atomic.Bool
	value     T
	err       error
}

// New creates an unfulfilled promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{
		done:      make(chan types.Unit),
		completed: atomic.NewBool(false),
	}
}

// Complete fulfills the promise with the given value.
// It reports whether this call was the one that settled the promise.
func (x *Promise[T]) Complete(value T) bool {
	if !x.completed.CompareAndSwap(false, true) {
		return false
	}
	x.value = value
	close(x.done)
	return true
}

// Fail settles the promise with the given error.
// It reports whether this call was the one that settled the promise.
func (x *Promise[T]) Fail(err error) bool {
	if !x.completed.CompareAndSwap(false, true) {
		return false
	}
	x.err = err
	close(x.done)
	return true
}

// Done returns a channel closed once the promise settles. Use Result
// afterwards to read the settled value.
func (x *Promise[T]) Done() <-chan types.Unit {
	return x.done
}

// Result returns the settled value or error. Only valid after Done is
// closed.
func (x *Promise[T]) Result() (T, error) {
	return x.value, x.err
}

// Completed reports whether the promise has been settled.
func (x *Promise[T]) Completed() bool {
	return x.completed.Load()
}

// Await blocks until the promise settles or the context ends, and
// returns the settled value or error.
func (x *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-x.done:
		return x.value, x.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
