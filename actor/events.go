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

import "time"

// Event stream topics. Subscribe through the eventstream configured with
// WithEventStream. Events are a pure side channel: they never sit on the
// delivery path and never alter control flow.
const (
	// TopicLifecycle carries ActorStarted, ActorStopped, StopVetoed and
	// HandlerPanicked events.
	TopicLifecycle = "troupe.lifecycle"
	// TopicDeadletter carries Deadletter events.
	TopicDeadletter = "troupe.deadletters"
)

// ActorStarted is published when an actor enters the Running state.
type ActorStarted struct {
	Name      string
	Timestamp time.Time
}

// ActorStopped is published after an actor's PostStop hook has run.
type ActorStopped struct {
	Name      string
	Timestamp time.Time
}

// StopVetoed is published when an actor's PreStop hook refuses a
// voluntary stop request.
type StopVetoed struct {
	Name      string
	Timestamp time.Time
}

// HandlerPanicked is published when a Receive invocation panics. The
// actor is force-stopped afterwards.
type HandlerPanicked struct {
	Name      string
	Err       error
	Timestamp time.Time
}

// Deadletter is published for every message discarded while a stopping
// actor drains its mailbox and stash.
type Deadletter struct {
	Name      string
	Message   any
	Timestamp time.Time
}
