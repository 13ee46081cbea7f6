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
	"github.com/troupe-io/troupe/internal/workerpool"
)

// Spawner is the executor capability of the runtime: the manager loop of
// every actor enters execution exclusively through Spawn. Implementations
// decide where the task runs; the runtime only requires that the task
// eventually starts and runs to completion.
type Spawner interface {
	Spawn(task func()) error
}

// GoSpawner runs every task on a dedicated goroutine. This is the
// default spawner.
type GoSpawner struct{}

// enforce compilation error
var _ Spawner = GoSpawner{}

// Spawn starts the task on a new goroutine.
func (GoSpawner) Spawn(task func()) error {
	go task()
	return nil
}

// PoolSpawner runs tasks on a shared worker pool, reusing goroutines
// across short-lived actors. Idle workers passivate, so a host embedding
// many transient actors does not accumulate parked goroutines.
type PoolSpawner struct {
	pool *workerpool.WorkerPool
}

// enforce compilation error
var _ Spawner = (*PoolSpawner)(nil)

// NewPoolSpawner creates and starts a pool-backed spawner.
func NewPoolSpawner(opts ...workerpool.Option) *PoolSpawner {
	pool := workerpool.New(opts...)
	pool.Start()
	return &PoolSpawner{pool: pool}
}

// Spawn submits the task to the pool.
func (x *PoolSpawner) Spawn(task func()) error {
	return x.pool.Submit(task)
}

// Shutdown stops the underlying pool. Actors whose loops are still
// running finish their work; new Spawn calls fail afterwards.
func (x *PoolSpawner) Shutdown() {
	x.pool.Stop()
}
