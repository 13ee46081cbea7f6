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

// Package actor implements an in-process actor runtime: independent units
// of state that communicate exclusively through asynchronous messages,
// each processing one message at a time regardless of how many goroutines
// hold addresses to it.
package actor

// Actor represents the Actor interface
// This will be implemented by any user who wants to create an actor
type Actor interface {
	// PreStart is run before the actor receives its first message. Use it to
	// initialize state, open connections, and the like. When PreStart returns
	// an error the spawn fails and the actor never runs.
	PreStart(ctx *Context) error
	// Receive processes any message dropped into the actor mailbox.
	// Invocations for the same actor are strictly serialized.
	Receive(ctx *ReceiveContext)
	// PostStop is executed when the actor is shutting down. It runs exactly
	// once on every termination path, after the last Receive has returned.
	PostStop(ctx *Context) error
}

// PreStopper is an optional interface an Actor can implement to intercept
// voluntary stop requests. Returning false keeps the actor running.
// Forced stops (last address dropped, handler fault) bypass the hook.
type PreStopper interface {
	PreStop(ctx *Context) bool
}
