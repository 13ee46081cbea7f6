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
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/troupe-io/troupe/log"
)

// schedulerStopTimeout bounds how long a stopping actor waits for its
// in-flight scheduled jobs.
const schedulerStopTimeout = 3 * time.Second

// scheduler delivers delayed and periodic self-notifications for one
// actor. Jobs hold only a weak self-address, so a pending notification
// never keeps the actor alive; once the actor stops, job sends fail
// silently with ErrDisconnected.
type scheduler struct {
	mu              sync.Mutex
	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	keys            mapset.Set[string]
	logger          log.Logger
}

// newScheduler creates an instance of scheduler
func newScheduler(logger log.Logger) *scheduler {
	// quartz logging off: scheduling failures surface through the actor logger
	quartzScheduler, _ := quartz.NewStdScheduler(
		quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	return &scheduler{
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		keys:            mapset.NewSet[string](),
		logger:          logger,
	}
}

// start starts the underlying quartz scheduler. Idempotent.
func (x *scheduler) start(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.started.Load() {
		return
	}
	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())
}

// stop cancels every pending job and shuts the scheduler down. The
// wait for in-flight jobs happens outside the lock so concurrent
// Cancel calls are not held up for the stop window.
func (x *scheduler) stop(ctx context.Context) {
	if !x.started.Load() {
		return
	}
	x.mu.Lock()
	_ = x.quartzScheduler.Clear()
	x.keys.Clear()
	x.quartzScheduler.Stop()
	x.started.Store(x.quartzScheduler.IsStarted())
	x.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, schedulerStopTimeout)
	defer cancel()
	x.quartzScheduler.Wait(ctx)
}

// scheduleOnce delivers message to the weak address once after delay.
func (x *scheduler) scheduleOnce(weak *WeakAddress, delay time.Duration, message any) (*Cancellable, error) {
	return x.schedule(weak, message, quartz.NewRunOnceTrigger(delay))
}

// scheduleEvery delivers message to the weak address at every interval.
func (x *scheduler) scheduleEvery(weak *WeakAddress, interval time.Duration, message any) (*Cancellable, error) {
	return x.schedule(weak, message, quartz.NewSimpleTrigger(interval))
}

func (x *scheduler) schedule(weak *WeakAddress, message any, trigger quartz.Trigger) (*Cancellable, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return nil, ErrSchedulerNotRunning
	}

	notify := job.NewFunctionJob[bool](
		func(ctx context.Context) (bool, error) {
			err := weak.Tell(ctx, message)
			return err == nil, err
		},
	)

	key := uuid.NewString()
	detail := quartz.NewJobDetail(notify, quartz.NewJobKey(key))
	if err := x.quartzScheduler.ScheduleJob(detail, trigger); err != nil {
		return nil, err
	}
	x.keys.Add(key)
	return &Cancellable{scheduler: x, key: key}, nil
}

// cancel removes the job with the given key when it is still pending.
func (x *scheduler) cancel(key string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.keys.Contains(key) {
		return
	}
	x.keys.Remove(key)
	if err := x.quartzScheduler.DeleteJob(quartz.NewJobKey(key)); err != nil {
		x.logger.Debugf("failed to delete scheduled job=(%s): %v", key, err)
	}
}

// pendingJobs returns the number of live scheduled notifications.
func (x *scheduler) pendingJobs() int {
	return x.keys.Cardinality()
}

// Cancellable is the handle of a pending NotifyAfter or NotifyEvery.
type Cancellable struct {
	scheduler *scheduler
	key       string
}

// Cancel revokes the pending notification. Cancelling an already-fired
// or already-cancelled notification is a no-op.
func (c *Cancellable) Cancel() {
	c.scheduler.cancel(c.key)
}
