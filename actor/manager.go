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
	"fmt"
	"time"

	"go.uber.org/atomic"

	"github.com/troupe-io/troupe/eventstream"
	"github.com/troupe-io/troupe/internal/future"
	"github.com/troupe-io/troupe/internal/queue"
	"github.com/troupe-io/troupe/log"
)

// poisonPill is the control message produced by Address.Stop. The
// manager intercepts it; user actors never see it.
type poisonPill struct{}

// lifecycle states of a manager
const (
	stateStarting int32 = iota
	stateRunning
	stateStopping
	stateStopped
)

// manager owns one actor instance and the consumer end of its mailbox.
// It is the only goroutine that ever touches the actor's state, which is
// what lets handler code run lock-free: messages are dispatched one at a
// time, never concurrently.
//
// Lifecycle: Starting (PreStart, before the loop) → Running (dispatch
// loop) → Stopping (voluntary, forced, or no strong address left) →
// Stopped (PostStop, exactly once on every path).
type manager struct {
	actor   Actor
	mailbox *mailbox
	name    string
	logger  log.Logger
	stream  eventstream.Stream
	sched   *scheduler
	stash   *queue.MpscQueue[*ReceiveContext]

	state      *atomic.Int32
	askTimeout time.Duration

	// promises of in-flight Stop calls, settled once the actor reaches
	// the Stopped state. Only the manager goroutine touches this.
	stopReplies []*future.Promise[any]
}

// run is the drive loop. It executes as a single task on whatever
// spawner the embedding application chose and suspends in dequeue
// whenever the mailbox is empty; it never busy-spins.
func (x *manager) run() {
	x.state.Store(stateRunning)
	x.logger.Debugf("actor=(%s) started", x.name)
	x.publish(TopicLifecycle, ActorStarted{Name: x.name, Timestamp: time.Now()})

	for x.state.Load() == stateRunning {
		rctx, err := x.mailbox.dequeue(context.Background())
		if err != nil {
			// mailbox closed and fully drained: the last strong address
			// is gone. Forced stop, no veto.
			x.state.Store(stateStopping)
			break
		}
		x.dispatch(rctx)
	}
	x.terminate()
}

// dispatch runs one envelope through the actor and applies whatever the
// actor signalled on the context afterwards.
func (x *manager) dispatch(rctx *ReceiveContext) {
	if _, ok := rctx.message.(poisonPill); ok {
		x.handlePoisonPill(rctx)
		releaseContext(rctx)
		return
	}

	x.invoke(rctx)

	if rctx.stashed {
		// the stash buffer owns the context now; its reply stays pending
		return
	}
	if rctx.reply != nil && !rctx.reply.Completed() {
		// the actor finished the message without responding: the asker
		// must not hang
		rctx.reply.Fail(ErrDisconnected)
	}
	if rctx.stopRequested && x.state.Load() == stateRunning {
		x.tryStop(false)
	}
	releaseContext(rctx)
}

// invoke calls Receive with panic isolation. A panicking handler fails
// only its own actor: the fault is logged, the asker (if any) is failed,
// and the actor is force-stopped so PostStop still runs.
func (x *manager) invoke(rctx *ReceiveContext) {
	defer func() {
		if r := recover(); r != nil {
			err := NewPanicError(fmt.Errorf("%v", r))
			x.logger.Errorf("actor=(%s) receive panicked: %v", x.name, err)
			x.publish(TopicLifecycle, HandlerPanicked{Name: x.name, Err: err, Timestamp: time.Now()})
			if rctx.reply != nil {
				rctx.reply.Fail(err)
			}
			x.state.Store(stateStopping)
		}
	}()
	x.actor.Receive(rctx)
}

// handlePoisonPill processes an Address.Stop request. The stop is
// voluntary and therefore vetoable; an accepted stop settles its reply
// only once the actor has fully stopped.
func (x *manager) handlePoisonPill(rctx *ReceiveContext) {
	if x.tryStop(false) {
		if rctx.reply != nil {
			x.stopReplies = append(x.stopReplies, rctx.reply)
		}
		return
	}
	if rctx.reply != nil {
		rctx.reply.Fail(ErrStopVetoed)
	}
}

// tryStop moves the actor into Stopping and reports whether it did.
// A voluntary stop consults the actor's PreStop hook first; returning
// false there keeps the actor Running. Forced stops skip the hook.
func (x *manager) tryStop(forced bool) bool {
	if !forced {
		if hook, ok := x.actor.(PreStopper); ok {
			if !hook.PreStop(newContext(context.Background(), x)) {
				x.logger.Debugf("actor=(%s) vetoed a stop request", x.name)
				x.publish(TopicLifecycle, StopVetoed{Name: x.name, Timestamp: time.Now()})
				return false
			}
		}
	}
	x.state.Store(stateStopping)
	return true
}

// terminate is the single exit path of the drive loop. It closes the
// mailbox, discards whatever is still queued or stashed, stops the
// scheduler, runs PostStop exactly once and settles pending Stop calls.
func (x *manager) terminate() {
	x.mailbox.close()
	x.mailbox.drain(x.discard)
	x.drainStash()
	if x.sched != nil {
		x.sched.stop(context.Background())
	}

	if err := x.actor.PostStop(newContext(context.Background(), x)); err != nil {
		x.logger.Errorf("actor=(%s) postStop failed: %v", x.name, err)
	}

	x.state.Store(stateStopped)
	for _, reply := range x.stopReplies {
		reply.Complete(nil)
	}
	x.stopReplies = nil
	x.mailbox.dispose()

	x.logger.Debugf("actor=(%s) stopped", x.name)
	x.publish(TopicLifecycle, ActorStopped{Name: x.name, Timestamp: time.Now()})
}

// discard disposes of an envelope that will never be dispatched. Pending
// askers resolve ErrDisconnected; pending Stop calls resolve once the
// actor is stopped; everything else becomes a deadletter.
func (x *manager) discard(rctx *ReceiveContext) {
	if _, ok := rctx.message.(poisonPill); ok {
		if rctx.reply != nil {
			x.stopReplies = append(x.stopReplies, rctx.reply)
		}
		releaseContext(rctx)
		return
	}
	if rctx.reply != nil {
		rctx.reply.Fail(ErrDisconnected)
	}
	x.publish(TopicDeadletter, Deadletter{Name: x.name, Message: rctx.message, Timestamp: time.Now()})
	rctx.stashed = false
	releaseContext(rctx)
}

// unstash redelivers the oldest stashed envelope.
func (x *manager) unstash() error {
	if x.stash == nil {
		return ErrStashBufferNotSet
	}
	rctx, ok := x.stash.Pop()
	if !ok {
		return nil
	}
	rctx.stashed = false
	x.dispatch(rctx)
	return nil
}

// unstashAll redelivers every stashed envelope in stash order. An
// envelope the actor stashes again during redelivery goes back to the
// end of the buffer and is not revisited in this pass.
func (x *manager) unstashAll() error {
	if x.stash == nil {
		return ErrStashBufferNotSet
	}
	for pending := x.stash.Len(); pending > 0; pending-- {
		rctx, ok := x.stash.Pop()
		if !ok {
			return nil
		}
		rctx.stashed = false
		x.dispatch(rctx)
	}
	return nil
}

// drainStash discards stashed envelopes during termination.
func (x *manager) drainStash() {
	if x.stash == nil {
		return
	}
	for {
		rctx, ok := x.stash.Pop()
		if !ok {
			return
		}
		x.discard(rctx)
	}
}

// notifyAfter schedules a one-shot self-notification.
func (x *manager) notifyAfter(delay time.Duration, message any) (*Cancellable, error) {
	if delay <= 0 {
		return nil, ErrInvalidTimeout
	}
	if !x.isRunning() {
		return nil, ErrSchedulerNotRunning
	}
	return x.ensureScheduler().scheduleOnce(x.newWeakAddress(), delay, message)
}

// notifyEvery schedules a periodic self-notification.
func (x *manager) notifyEvery(interval time.Duration, message any) (*Cancellable, error) {
	if interval <= 0 {
		return nil, ErrInvalidTimeout
	}
	if !x.isRunning() {
		return nil, ErrSchedulerNotRunning
	}
	return x.ensureScheduler().scheduleEvery(x.newWeakAddress(), interval, message)
}

// ensureScheduler lazily starts the per-actor scheduler. Only the
// manager goroutine calls this, so no locking is needed.
func (x *manager) ensureScheduler() *scheduler {
	if x.sched == nil {
		x.sched = newScheduler(x.logger)
		x.sched.start(context.Background())
	}
	return x.sched
}

func (x *manager) isRunning() bool {
	return x.state.Load() == stateRunning
}

// newStrongAddress mints a strong handle to this actor.
func (x *manager) newStrongAddress() *Address {
	x.mailbox.incStrongRefs()
	return &Address{
		mailbox:  x.mailbox,
		manager:  x,
		released: atomic.NewBool(false),
	}
}

// newWeakAddress mints a weak handle to this actor.
func (x *manager) newWeakAddress() *WeakAddress {
	return &WeakAddress{mailbox: x.mailbox, manager: x}
}

// publish pushes an event onto the configured stream, if any. Events
// never sit on the message delivery path.
func (x *manager) publish(topic string, event any) {
	if x.stream != nil {
		x.stream.Publish(topic, event)
	}
}
