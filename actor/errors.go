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
	"errors"
	"fmt"
)

var (
	// ErrDisconnected is returned when sending to an actor whose mailbox is
	// closed, or when awaiting a reply the actor will never produce.
	ErrDisconnected = errors.New("actor is disconnected")

	// ErrMailboxFull is returned by the fail-fast send path when a bounded
	// mailbox is at capacity.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrRequestTimeout indicates that an Ask message timed out while waiting
	// for a response.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrStopVetoed is returned by Address.Stop when the actor's PreStop hook
	// refused a voluntary stop.
	ErrStopVetoed = errors.New("stop request was vetoed")

	// ErrStashBufferNotSet is returned when an actor tries to stash a message
	// but no stash buffer is configured.
	ErrStashBufferNotSet = errors.New("actor is not setup with a stash buffer")

	// ErrSchedulerNotRunning is returned when scheduling a self-notification
	// on an actor that is no longer running.
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInitFailure is returned when the actor's PreStart hook fails during
	// initialization.
	ErrInitFailure = errors.New("preStart failed")

	// ErrInvalidTimeout is returned when a timeout value is less than or
	// equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) PanicError {
	return PanicError{err}
}

// Error implements the standard error interface
func (e PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

// Unwrap returns the wrapped error
func (e PanicError) Unwrap() error {
	return e.err
}
