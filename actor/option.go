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
	"time"

	"github.com/google/uuid"

	"github.com/troupe-io/troupe/eventstream"
	"github.com/troupe-io/troupe/log"
)

const (
	// DefaultAskTimeout bounds Ask calls whose context carries no deadline.
	DefaultAskTimeout = 5 * time.Second
	// DefaultInitMaxRetries is the number of PreStart attempts before a
	// spawn fails.
	DefaultInitMaxRetries = 5
	// DefaultInitTimeout caps the backoff between PreStart attempts.
	DefaultInitTimeout = time.Second

	// initial backoff between PreStart attempts
	initRetryDelay = 100 * time.Millisecond
)

// spawnConfig carries the settings of a single Spawn call.
type spawnConfig struct {
	name           string
	capacity       int
	logger         log.Logger
	stream         eventstream.Stream
	askTimeout     time.Duration
	initMaxRetries int
	initTimeout    time.Duration
	spawner        Spawner
	stash          bool
}

func newSpawnConfig(opts ...SpawnOption) *spawnConfig {
	config := &spawnConfig{
		name:           "actor-" + uuid.NewString(),
		logger:         log.DefaultLogger,
		askTimeout:     DefaultAskTimeout,
		initMaxRetries: DefaultInitMaxRetries,
		initTimeout:    DefaultInitTimeout,
		spawner:        GoSpawner{},
	}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// SpawnOption is the interface that applies a Spawn option.
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOption(nil)

// spawnOption implements the SpawnOption interface.
type spawnOption func(config *spawnConfig)

// Apply implementation
func (f spawnOption) Apply(c *spawnConfig) {
	f(c)
}

// WithName sets the actor name. Defaults to a generated unique name.
func WithName(name string) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.name = name
	})
}

// WithCapacity bounds the mailbox at the given capacity per priority
// class. A non-positive capacity means unbounded, which is the default.
func WithCapacity(capacity int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.capacity = capacity
	})
}

// WithLogger sets the actor logger.
func WithLogger(logger log.Logger) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.logger = logger
	})
}

// WithEventStream publishes the actor's lifecycle and deadletter events
// onto the given stream.
func WithEventStream(stream eventstream.Stream) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.stream = stream
	})
}

// WithAskTimeout overrides the default timeout of Ask calls whose
// context carries no deadline.
func WithAskTimeout(timeout time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.askTimeout = timeout
	})
}

// WithInitMaxRetries sets the number of PreStart attempts.
func WithInitMaxRetries(retries int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initMaxRetries = retries
	})
}

// WithInitTimeout caps the backoff between PreStart attempts.
func WithInitTimeout(timeout time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initTimeout = timeout
	})
}

// WithSpawner selects the executor backend that runs the actor's loop.
func WithSpawner(spawner Spawner) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.spawner = spawner
	})
}

// WithStash equips the actor with an unbounded stash buffer, enabling
// Stash, Unstash and UnstashAll on its ReceiveContext.
func WithStash() SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.stash = true
	})
}
