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
	"time"

	"github.com/troupe-io/troupe/internal/future"
	"github.com/troupe-io/troupe/log"
)

// ReceiveContext is the envelope handed to Receive for every message. It
// carries the message payload, the optional reply channel of an Ask, and
// the self-management surface of the actor. A ReceiveContext is only
// valid for the duration of the Receive call that received it.
type ReceiveContext struct {
	ctx     context.Context
	message any
	reply   *future.Promise[any]
	class   priority
	manager *manager

	stashed       bool
	stopRequested bool
}

// build populates a pooled context for a fresh send.
func (c *ReceiveContext) build(ctx context.Context, m *manager, message any, class priority, reply *future.Promise[any]) *ReceiveContext {
	c.ctx = ctx
	c.manager = m
	c.message = message
	c.class = class
	c.reply = reply
	return c
}

// reset clears the context before it returns to the pool.
func (c *ReceiveContext) reset() {
	c.ctx = nil
	c.message = nil
	c.reply = nil
	c.class = ordinaryPriority
	c.manager = nil
	c.stashed = false
	c.stopRequested = false
}

// Message returns the message payload.
func (c *ReceiveContext) Message() any {
	return c.message
}

// Context returns the context the sender attached to the message.
func (c *ReceiveContext) Context() context.Context {
	return c.ctx
}

// Response delivers the given value to the sender of an Ask. The first
// response wins; responding to a Tell is a no-op, as is responding after
// the asker gave up waiting.
func (c *ReceiveContext) Response(value any) {
	if c.reply != nil {
		c.reply.Complete(value)
	}
}

// Err fails the sender's Ask with the given error. For a Tell the error
// has no observer and is logged instead.
func (c *ReceiveContext) Err(err error) {
	if c.reply != nil {
		c.reply.Fail(err)
		return
	}
	c.manager.logger.Errorf("actor=(%s) failed to handle message: %v", c.manager.name, err)
}

// Self mints a fresh strong address to this actor. The caller owns the
// handle and must Close it; an unclosed handle keeps the actor alive.
func (c *ReceiveContext) Self() *Address {
	return c.manager.newStrongAddress()
}

// SelfWeak returns a weak address to this actor. Weak addresses never
// keep the actor alive.
func (c *ReceiveContext) SelfWeak() *WeakAddress {
	return c.manager.newWeakAddress()
}

// Stop asks the runtime to stop this actor once the current Receive
// returns. The stop is voluntary: a PreStop hook may veto it.
func (c *ReceiveContext) Stop() {
	c.stopRequested = true
}

// IsRunning reports whether the actor is in the Running state.
func (c *ReceiveContext) IsRunning() bool {
	return c.manager.isRunning()
}

// NotifyAfter schedules message to be delivered to this actor once,
// after the given delay. The returned handle cancels the pending
// notification. The notification holds only a weak self-address, so a
// pending timer never keeps the actor alive.
func (c *ReceiveContext) NotifyAfter(delay time.Duration, message any) (*Cancellable, error) {
	return c.manager.notifyAfter(delay, message)
}

// NotifyEvery schedules message to be delivered to this actor
// repeatedly at the given interval, until cancelled or the actor stops.
func (c *ReceiveContext) NotifyEvery(interval time.Duration, message any) (*Cancellable, error) {
	return c.manager.notifyEvery(interval, message)
}

// Stash sets the current message aside into the stash buffer. The
// message is redelivered by Unstash or UnstashAll; its Ask reply, if
// any, stays pending until then.
func (c *ReceiveContext) Stash() error {
	if c.manager.stash == nil {
		return ErrStashBufferNotSet
	}
	c.stashed = true
	c.manager.stash.Push(c)
	return nil
}

// Unstash redelivers the oldest stashed message to the actor.
func (c *ReceiveContext) Unstash() error {
	return c.manager.unstash()
}

// UnstashAll redelivers every stashed message in stash order.
func (c *ReceiveContext) UnstashAll() error {
	return c.manager.unstashAll()
}

// Logger returns the logger of the actor.
func (c *ReceiveContext) Logger() log.Logger {
	return c.manager.logger
}

// ActorName returns the name of the actor.
func (c *ReceiveContext) ActorName() string {
	return c.manager.name
}
