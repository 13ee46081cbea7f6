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

	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/troupe-io/troupe/internal/queue"
)

// Spawn creates an actor, runs its PreStart hook, hands its drive loop
// to the configured spawner and returns the first strong address.
//
// PreStart runs synchronously with retries before any message can
// arrive; messages the hook sends to the actor's own address enqueue
// normally and are processed once the loop starts. When PreStart keeps
// failing the spawn is abandoned and the returned error wraps
// ErrInitFailure.
//
// The returned address is the caller's to close. Closing the last strong
// address stops the actor once its queue drains.
func Spawn(ctx context.Context, actor Actor, opts ...SpawnOption) (*Address, error) {
	config := newSpawnConfig(opts...)

	m := &manager{
		actor:      actor,
		mailbox:    newMailbox(config.capacity),
		name:       config.name,
		logger:     config.logger,
		stream:     config.stream,
		askTimeout: config.askTimeout,
		state:      atomic.NewInt32(stateStarting),
	}
	if config.stash {
		m.stash = queue.NewMpscQueue[*ReceiveContext]()
	}

	addr := m.newStrongAddress()

	retrier := retry.NewRetrier(config.initMaxRetries, initRetryDelay, config.initTimeout)
	if err := retrier.RunContext(ctx, func(ctx context.Context) error {
		return actor.PreStart(newContext(ctx, m))
	}); err != nil {
		abandonSpawn(m, addr)
		return nil, multierr.Append(ErrInitFailure, err)
	}

	if err := config.spawner.Spawn(m.run); err != nil {
		abandonSpawn(m, addr)
		return nil, err
	}
	return addr, nil
}

// abandonSpawn tears down an actor whose loop never started: the mailbox
// closes, anything a PreStart attempt self-sent is discarded and the
// storage is released.
func abandonSpawn(m *manager, addr *Address) {
	addr.Close()
	m.mailbox.drain(m.discard)
	m.mailbox.dispose()
	m.state.Store(stateStopped)
}
