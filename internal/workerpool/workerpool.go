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

// Package workerpool implements a worker pool that reuses goroutines
// across submitted tasks. Workers are spawned on demand, so tasks never
// wait behind one another, and idle workers are passivated after a
// configurable quiet period.
package workerpool

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/troupe-io/troupe/internal/types"
)

// ErrNotStarted is returned by Submit when the pool has not been started
// or has already been stopped.
var ErrNotStarted = errors.New("worker pool is not started")

// Option is the interface that applies a WorkerPool option.
type Option interface {
	// Apply sets the Option value of a WorkerPool.
	Apply(pool *WorkerPool)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(pool *WorkerPool)

// Apply applies the WorkerPool's option
func (f OptionFunc) Apply(pool *WorkerPool) {
	f(pool)
}

// WithPassivateAfter sets the duration after which an idle worker is
// shut down.
func WithPassivateAfter(d time.Duration) Option {
	return OptionFunc(func(pool *WorkerPool) {
		pool.passivateAfter = d
	})
}

// WorkerPool reuses goroutines across submitted tasks.
type WorkerPool struct {
	passivateAfter time.Duration

	mu      sync.Mutex
	idle    []*worker
	cache   sync.Pool
	started *atomic.Bool
	stopped *atomic.Bool
	spawned *atomic.Int64
	done    chan types.Unit
}

// worker is a goroutine bound to a work channel. It stays alive between
// tasks until the passivation sweep retires it.
type worker struct {
	workChan chan func()
	lastUsed *atomic.Int64
	deleted  *atomic.Bool
}

// New creates a worker pool with the given options. The pool must be
// started before tasks can be submitted.
func New(opts ...Option) *WorkerPool {
	pool := &WorkerPool{
		passivateAfter: time.Second,
		started:        atomic.NewBool(false),
		stopped:        atomic.NewBool(false),
		spawned:        atomic.NewInt64(0),
		done:           make(chan types.Unit),
	}
	pool.cache = sync.Pool{
		New: func() any {
			return &worker{
				workChan: make(chan func()),
				lastUsed: atomic.NewInt64(0),
				deleted:  atomic.NewBool(false),
			}
		},
	}
	for _, opt := range opts {
		opt.Apply(pool)
	}
	return pool
}

// Start starts the pool and its passivation sweeper.
func (x *WorkerPool) Start() {
	if !x.started.CompareAndSwap(false, true) {
		return
	}
	go x.sweep()
}

// Stop stops the pool. In-flight tasks run to completion; their workers
// exit once done. Idle workers are shut down immediately.
func (x *WorkerPool) Stop() {
	if !x.started.Load() || !x.stopped.CompareAndSwap(false, true) {
		return
	}
	close(x.done)

	x.mu.Lock()
	idle := x.idle
	x.idle = nil
	x.mu.Unlock()

	for _, w := range idle {
		if w.deleted.CompareAndSwap(false, true) {
			close(w.workChan)
		}
	}
}

// SpawnedWorkers returns the number of live worker goroutines.
func (x *WorkerPool) SpawnedWorkers() int {
	return int(x.spawned.Load())
}

// Submit hands the given task to an idle worker, spawning a fresh one
// when none is available. Tasks never queue behind each other, so
// long-running tasks cannot starve later submissions.
func (x *WorkerPool) Submit(task func()) error {
	if !x.started.Load() || x.stopped.Load() {
		return ErrNotStarted
	}

	x.mu.Lock()
	if n := len(x.idle); n > 0 {
		w := x.idle[n-1]
		x.idle[n-1] = nil
		x.idle = x.idle[:n-1]
		x.mu.Unlock()
		w.workChan <- task
		return nil
	}
	x.mu.Unlock()

	w := x.cache.Get().(*worker)
	w.deleted.Store(false)
	go x.run(w)
	w.workChan <- task
	return nil
}

// run is the worker loop. It executes tasks off the work channel until
// the worker is retired or the pool refuses to park it.
func (x *WorkerPool) run(w *worker) {
	x.spawned.Inc()
	defer x.spawned.Dec()

	for task := range w.workChan {
		task()
		if !x.park(w) {
			return
		}
	}
}

// park returns the worker to the idle list and reports whether the
// worker should keep waiting for tasks.
func (x *WorkerPool) park(w *worker) bool {
	w.lastUsed.Store(time.Now().UnixNano())
	x.mu.Lock()
	if x.stopped.Load() {
		x.mu.Unlock()
		x.cache.Put(w)
		return false
	}
	x.idle = append(x.idle, w)
	x.mu.Unlock()
	return true
}

// sweep periodically retires workers that idled past passivateAfter.
func (x *WorkerPool) sweep() {
	ticker := time.NewTicker(x.passivateAfter)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			x.retireIdle(now)
		case <-x.done:
			return
		}
	}
}

func (x *WorkerPool) retireIdle(now time.Time) {
	deadline := now.Add(-x.passivateAfter).UnixNano()

	x.mu.Lock()
	var retired []*worker
	kept := x.idle[:0]
	for _, w := range x.idle {
		if w.lastUsed.Load() < deadline {
			retired = append(retired, w)
			continue
		}
		kept = append(kept, w)
	}
	x.idle = kept
	x.mu.Unlock()

	for _, w := range retired {
		if w.deleted.CompareAndSwap(false, true) {
			close(w.workChan)
		}
	}
}
