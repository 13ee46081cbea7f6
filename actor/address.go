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
	"errors"

	"go.uber.org/atomic"

	"github.com/troupe-io/troupe/internal/future"
)

// Address is a strong, cloneable handle to an actor's mailbox and the
// only way to send it messages from outside its own execution.
//
// Every strong handle keeps the actor alive. Closing the last one closes
// the mailbox: the actor drains what is already queued and then stops.
// Each handle must be closed exactly once; Close on the same handle is
// idempotent.
type Address struct {
	mailbox  *mailbox
	manager  *manager
	released *atomic.Bool
}

// Tell sends message to the actor without waiting for a reply. When the
// mailbox is bounded and full the call suspends, respecting enqueue
// order among suspended senders, until space frees or ctx ends.
func (x *Address) Tell(ctx context.Context, message any) error {
	if x.released.Load() {
		return ErrDisconnected
	}
	rctx := getContext().build(ctx, x.manager, message, ordinaryPriority, nil)
	if err := x.mailbox.enqueue(ctx, rctx); err != nil {
		releaseContext(rctx)
		return err
	}
	return nil
}

// TryTell sends message without ever suspending the caller. It fails
// fast with ErrMailboxFull when the mailbox is at capacity or other
// senders are already waiting, and ErrDisconnected when the actor is
// gone.
func (x *Address) TryTell(message any) error {
	if x.released.Load() {
		return ErrDisconnected
	}
	rctx := getContext().build(context.Background(), x.manager, message, ordinaryPriority, nil)
	if err := x.mailbox.tryEnqueue(rctx); err != nil {
		releaseContext(rctx)
		return err
	}
	return nil
}

// Ask sends message to the actor and waits for its reply. The wait is
// bounded by the ctx deadline when one is set, otherwise by the actor's
// ask timeout. Ask resolves ErrDisconnected when the actor stops before
// replying or finishes the message without responding.
func (x *Address) Ask(ctx context.Context, message any) (any, error) {
	if x.released.Load() {
		return nil, ErrDisconnected
	}
	reply := future.New[any]()
	rctx := getContext().build(ctx, x.manager, message, ordinaryPriority, reply)
	if err := x.mailbox.enqueue(ctx, rctx); err != nil {
		releaseContext(rctx)
		return nil, err
	}

	if _, ok := ctx.Deadline(); ok {
		return reply.Await(ctx)
	}

	timer := timers.Get(x.manager.askTimeout)
	defer timers.Put(timer)
	select {
	case <-reply.Done():
		return reply.Result()
	case <-timer.C:
		return nil, ErrRequestTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop asks the actor to stop. The request travels on the control class,
// overtaking ordinary traffic, and is vetoable by the actor's PreStop
// hook: a veto returns ErrStopVetoed and the actor keeps running.
// Stopping an already-stopped actor returns nil. Stop does not release
// this handle; Close it separately.
func (x *Address) Stop(ctx context.Context) error {
	if x.released.Load() {
		return ErrDisconnected
	}
	reply := future.New[any]()
	rctx := getContext().build(ctx, x.manager, poisonPill{}, controlPriority, reply)
	if err := x.mailbox.enqueue(ctx, rctx); err != nil {
		releaseContext(rctx)
		if errors.Is(err, ErrDisconnected) {
			// already stopped
			return nil
		}
		return err
	}
	_, err := reply.Await(ctx)
	return err
}

// Clone mints a new strong handle to the same actor. It returns nil once
// this handle has been closed or the actor is already gone.
func (x *Address) Clone() *Address {
	if x.released.Load() || !x.mailbox.tryIncStrongRefs() {
		return nil
	}
	return &Address{
		mailbox:  x.mailbox,
		manager:  x.manager,
		released: atomic.NewBool(false),
	}
}

// Close releases this strong handle. Releasing the last strong handle
// closes the mailbox, which lets the actor drain and stop. Idempotent
// per handle.
func (x *Address) Close() {
	if x.released.CompareAndSwap(false, true) {
		x.mailbox.decStrongRefs()
	}
}

// Downgrade returns a weak handle to the same actor. The strong handle
// stays live and must still be closed.
func (x *Address) Downgrade() *WeakAddress {
	return &WeakAddress{mailbox: x.mailbox, manager: x.manager}
}

// IsConnected reports whether messages sent through this handle can
// still reach the actor.
func (x *Address) IsConnected() bool {
	return !x.released.Load() && !x.mailbox.isClosed()
}

// Name returns the name of the actor behind this address.
func (x *Address) Name() string {
	return x.manager.name
}

// MailboxSize returns a point-in-time count of queued messages.
func (x *Address) MailboxSize() int64 {
	return x.mailbox.size()
}

// WeakAddress is a handle that can reach an actor while it lives but
// never keeps it alive. Obtain one with Address.Downgrade, or from a
// context's SelfWeak.
type WeakAddress struct {
	mailbox *mailbox
	manager *manager
}

// Upgrade attempts to mint a strong handle. It fails once the last
// strong handle has been closed, even if the actor is still draining.
func (x *WeakAddress) Upgrade() (*Address, bool) {
	if !x.mailbox.tryIncStrongRefs() {
		return nil, false
	}
	return &Address{
		mailbox:  x.mailbox,
		manager:  x.manager,
		released: atomic.NewBool(false),
	}, true
}

// Tell sends message through a transient strong handle. It fails with
// ErrDisconnected when the actor is gone.
func (x *WeakAddress) Tell(ctx context.Context, message any) error {
	strong, ok := x.Upgrade()
	if !ok {
		return ErrDisconnected
	}
	defer strong.Close()
	return strong.Tell(ctx, message)
}

// Ask sends message and waits for the reply through a transient strong
// handle.
func (x *WeakAddress) Ask(ctx context.Context, message any) (any, error) {
	strong, ok := x.Upgrade()
	if !ok {
		return nil, ErrDisconnected
	}
	defer strong.Close()
	return strong.Ask(ctx, message)
}

// IsConnected reports whether the actor can still receive messages.
func (x *WeakAddress) IsConnected() bool {
	return x.mailbox.strongRefs.Load() > 0 && !x.mailbox.isClosed()
}

// Name returns the name of the actor behind this address.
func (x *WeakAddress) Name() string {
	return x.manager.name
}
