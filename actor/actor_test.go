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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/troupe-io/troupe/eventstream"
	"github.com/troupe-io/troupe/log"
)

// pinger replies "pong" to "ping" and counts lifecycle transitions.
type pinger struct {
	started *atomic.Int64
	stopped *atomic.Int64
}

func newPinger() *pinger {
	return &pinger{
		started: atomic.NewInt64(0),
		stopped: atomic.NewInt64(0),
	}
}

func (x *pinger) PreStart(*Context) error {
	x.started.Inc()
	return nil
}

func (x *pinger) Receive(ctx *ReceiveContext) {
	if ctx.Message() == "ping" {
		ctx.Response("pong")
	}
}

func (x *pinger) PostStop(*Context) error {
	x.stopped.Inc()
	return nil
}

func TestAskReceivesResponse(t *testing.T) {
	ctx := context.TODO()
	addr, err := Spawn(ctx, newPinger(), WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	defer addr.Close()

	reply, err := addr.Ask(ctx, "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)
}

func TestAskWithoutResponseResolvesDisconnected(t *testing.T) {
	ctx := context.TODO()
	// the actor finishes the message without responding
	addr, err := Spawn(ctx, newPinger(), WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	defer addr.Close()

	_, err = addr.Ask(ctx, "not-a-ping")
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestSingleFlightDispatch(t *testing.T) {
	inFlight := atomic.NewInt64(0)
	overlapped := atomic.NewBool(false)
	processed := atomic.NewInt64(0)

	probe := NewFuncActor(func(ctx *ReceiveContext) error {
		if inFlight.Inc() > 1 {
			overlapped.Store(true)
		}
		time.Sleep(time.Millisecond)
		processed.Inc()
		inFlight.Dec()
		return nil
	})

	ctx := context.TODO()
	addr, err := Spawn(ctx, probe, WithLogger(log.DiscardLogger))
	require.NoError(t, err)

	const senders = 8
	const perSender = 25
	g := new(errgroup.Group)
	for s := 0; s < senders; s++ {
		clone := addr.Clone()
		require.NotNil(t, clone)
		g.Go(func() error {
			defer clone.Close()
			for i := 0; i < perSender; i++ {
				if err := clone.Tell(ctx, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Eventually(t, func() bool {
		return processed.Load() == senders*perSender
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, overlapped.Load())
	addr.Close()
}

func TestLastStrongAddressStopsActorExactlyOnce(t *testing.T) {
	actor := newPinger()
	ctx := context.TODO()
	addr, err := Spawn(ctx, actor, WithLogger(log.DiscardLogger))
	require.NoError(t, err)

	second := addr.Clone()
	third := addr.Clone()
	require.NotNil(t, second)
	require.NotNil(t, third)

	require.NoError(t, addr.Tell(ctx, "ping"))
	addr.Close()
	second.Close()
	assert.True(t, third.IsConnected())
	third.Close()

	require.Eventually(t, func() bool {
		return actor.stopped.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// no second PostStop on any late path
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, actor.stopped.Load())
	assert.ErrorIs(t, third.Tell(ctx, "ping"), ErrDisconnected)
}

// stubborn vetoes the first stop request and accepts the next one.
type stubborn struct {
	pinger
	allowStop *atomic.Bool
}

func newStubborn() *stubborn {
	return &stubborn{
		pinger:    *newPinger(),
		allowStop: atomic.NewBool(false),
	}
}

func (x *stubborn) PreStop(*Context) bool {
	return x.allowStop.Swap(true)
}

func TestVetoedStopKeepsActorRunning(t *testing.T) {
	actor := newStubborn()
	ctx := context.TODO()
	addr, err := Spawn(ctx, actor, WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	defer addr.Close()

	assert.ErrorIs(t, addr.Stop(ctx), ErrStopVetoed)

	// the actor still accepts and answers messages
	reply, err := addr.Ask(ctx, "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)
	assert.Zero(t, actor.stopped.Load())

	// second request is accepted; Stop resolves once fully stopped
	require.NoError(t, addr.Stop(ctx))
	assert.EqualValues(t, 1, actor.stopped.Load())
}

func TestStopIsNotVetoableWhenForced(t *testing.T) {
	actor := newStubborn() // would veto a voluntary stop
	ctx := context.TODO()
	addr, err := Spawn(ctx, actor, WithLogger(log.DiscardLogger))
	require.NoError(t, err)

	addr.Close()
	require.Eventually(t, func() bool {
		return actor.stopped.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestWeakAddressFailsToUpgradeAfterLastClose(t *testing.T) {
	ctx := context.TODO()
	addr, err := Spawn(ctx, newPinger(), WithLogger(log.DiscardLogger))
	require.NoError(t, err)

	weak := addr.Downgrade()
	upgraded, ok := weak.Upgrade()
	require.True(t, ok)
	upgraded.Close()

	addr.Close()
	_, ok = weak.Upgrade()
	assert.False(t, ok)
	assert.False(t, weak.IsConnected())
	assert.ErrorIs(t, weak.Tell(ctx, "ping"), ErrDisconnected)
}

func TestReceivePanicForcesStop(t *testing.T) {
	ctx := context.TODO()
	stopped := atomic.NewInt64(0)
	faulty := NewFuncActor(
		func(ctx *ReceiveContext) error { panic("boom") },
		WithPostStopFunc(func(context.Context) error {
			stopped.Inc()
			return nil
		}),
	)

	addr, err := Spawn(ctx, faulty, WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	defer addr.Close()

	_, err = addr.Ask(ctx, "trigger")
	var panicErr PanicError
	require.ErrorAs(t, err, &panicErr)

	require.Eventually(t, func() bool {
		return stopped.Load() == 1
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, addr.Tell(ctx, "after"), ErrDisconnected)
}

func TestPreStartFailureAbortsSpawn(t *testing.T) {
	attempts := atomic.NewInt64(0)
	failing := NewFuncActor(
		func(ctx *ReceiveContext) error { return nil },
		WithPreStartFunc(func(context.Context) error {
			attempts.Inc()
			return errors.New("db unavailable")
		}),
	)

	_, err := Spawn(context.TODO(), failing,
		WithLogger(log.DiscardLogger),
		WithInitMaxRetries(2),
		WithInitTimeout(10*time.Millisecond))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitFailure)
	assert.EqualValues(t, 2, attempts.Load())
}

func TestPreStartRetriesUntilSuccess(t *testing.T) {
	attempts := atomic.NewInt64(0)
	flaky := NewFuncActor(
		func(ctx *ReceiveContext) error {
			ctx.Response("ok")
			return nil
		},
		WithPreStartFunc(func(context.Context) error {
			if attempts.Inc() == 1 {
				return errors.New("transient")
			}
			return nil
		}),
	)

	ctx := context.TODO()
	addr, err := Spawn(ctx, flaky,
		WithLogger(log.DiscardLogger),
		WithInitTimeout(10*time.Millisecond))
	require.NoError(t, err)
	defer addr.Close()

	reply, err := addr.Ask(ctx, "ready?")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.EqualValues(t, 2, attempts.Load())
}

func TestAskTimesOutOnBlockedActor(t *testing.T) {
	release := make(chan struct{})
	blocked := NewFuncActor(func(ctx *ReceiveContext) error {
		<-release
		return nil
	})

	ctx := context.TODO()
	addr, err := Spawn(ctx, blocked,
		WithLogger(log.DiscardLogger),
		WithAskTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = addr.Ask(ctx, "slow")
	assert.ErrorIs(t, err, ErrRequestTimeout)

	// a context deadline takes precedence over the configured timeout
	dctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = addr.Ask(dctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	addr.Close()
}

func TestTryTellAgainstFullMailbox(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	blocked := NewFuncActor(func(ctx *ReceiveContext) error {
		entered <- struct{}{}
		<-release
		return nil
	})

	ctx := context.TODO()
	addr, err := Spawn(ctx, blocked,
		WithLogger(log.DiscardLogger),
		WithCapacity(1))
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, "first"))
	<-entered // first message is in flight, mailbox empty again
	require.NoError(t, addr.TryTell("second"))
	assert.ErrorIs(t, addr.TryTell("third"), ErrMailboxFull)

	close(release)
	addr.Close()
}

func TestDeadlettersOnDrain(t *testing.T) {
	stream := eventstream.New()
	defer stream.Close()
	sub := stream.AddSubscriber()
	stream.Subscribe(sub, TopicDeadletter)

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	slow := NewFuncActor(func(ctx *ReceiveContext) error {
		entered <- struct{}{}
		<-release
		return nil
	})

	ctx := context.TODO()
	addr, err := Spawn(ctx, slow,
		WithLogger(log.DiscardLogger),
		WithEventStream(stream))
	require.NoError(t, err)

	require.NoError(t, addr.Tell(ctx, "in-flight"))
	<-entered
	require.NoError(t, addr.Tell(ctx, "discarded-1"))
	require.NoError(t, addr.Tell(ctx, "discarded-2"))

	// the stop request travels on the control class and overtakes the
	// two queued ordinary messages
	stopDone := make(chan error, 1)
	go func() { stopDone <- addr.Stop(ctx) }()
	require.Eventually(t, func() bool {
		return addr.MailboxSize() == 3
	}, time.Second, time.Millisecond)
	close(release)
	require.NoError(t, <-stopDone)

	discarded := map[any]bool{}
	require.Eventually(t, func() bool {
		for msg := range sub.Iterator() {
			event := msg.Payload().(Deadletter)
			discarded[event.Message] = true
		}
		return len(discarded) == 2
	}, time.Second, 10*time.Millisecond)
	assert.True(t, discarded["discarded-1"])
	assert.True(t, discarded["discarded-2"])
	addr.Close()
}

func TestLifecycleEventsArePublished(t *testing.T) {
	stream := eventstream.New()
	defer stream.Close()
	sub := stream.AddSubscriber()
	stream.Subscribe(sub, TopicLifecycle)

	ctx := context.TODO()
	addr, err := Spawn(ctx, newPinger(),
		WithName("observed"),
		WithLogger(log.DiscardLogger),
		WithEventStream(stream))
	require.NoError(t, err)

	require.NoError(t, addr.Stop(ctx))
	addr.Close()

	var started, stopped bool
	require.Eventually(t, func() bool {
		for msg := range sub.Iterator() {
			switch event := msg.Payload().(type) {
			case ActorStarted:
				started = event.Name == "observed"
			case ActorStopped:
				stopped = event.Name == "observed"
			}
		}
		return started && stopped
	}, time.Second, 10*time.Millisecond)
}

func TestStoppedActorLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.TODO()
	addr, err := Spawn(ctx, newPinger(), WithLogger(log.DiscardLogger))
	require.NoError(t, err)

	reply, err := addr.Ask(ctx, "ping")
	require.NoError(t, err)
	require.Equal(t, "pong", reply)

	require.NoError(t, addr.Stop(ctx))
	addr.Close()
}
