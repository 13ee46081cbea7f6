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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/troupe-io/troupe/internal/workerpool"
)

func TestPoolSpawnerRunsActors(t *testing.T) {
	spawner := NewPoolSpawner(workerpool.WithPassivateAfter(100 * time.Millisecond))
	defer spawner.Shutdown()

	ctx := context.TODO()
	addrs := make([]*Address, 0, 5)
	for i := 0; i < 5; i++ {
		addr, err := Spawn(ctx, newPinger(),
			WithName(fmt.Sprintf("pooled-%d", i)),
			WithSpawner(spawner))
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}

	for _, addr := range addrs {
		reply, err := addr.Ask(ctx, "ping")
		require.NoError(t, err)
		assert.Equal(t, "pong", reply)
	}

	for _, addr := range addrs {
		require.NoError(t, addr.Stop(ctx))
		addr.Close()
	}
}

func TestPoolSpawnerRefusesAfterShutdown(t *testing.T) {
	spawner := NewPoolSpawner()
	spawner.Shutdown()

	addr, err := Spawn(context.TODO(), newPinger(), WithSpawner(spawner))
	require.Nil(t, addr)
	assert.ErrorIs(t, err, workerpool.ErrNotStarted)
}

func TestGoSpawnerIsDefault(t *testing.T) {
	ctx := context.TODO()
	addr, err := Spawn(ctx, newPinger())
	require.NoError(t, err)
	defer addr.Close()

	reply, err := addr.Ask(ctx, "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)
}
