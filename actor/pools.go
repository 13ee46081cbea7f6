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
	"github.com/troupe-io/troupe/internal/timer"
)

// contextPoolSize controls the bounded channel-based pool for
// ReceiveContext. Unlike sync.Pool, items in a channel survive GC
// cycles, which keeps allocation behavior stable under burst traffic.
const contextPoolSize = 512

// contextCh is a channel-based bounded pool for ReceiveContext objects.
var contextCh = make(chan *ReceiveContext, contextPoolSize)

var timers = timer.NewPool()

// getContext retrieves a ReceiveContext from the channel-based pool.
// Falls back to heap allocation if the pool is empty.
func getContext() *ReceiveContext {
	select {
	case rctx := <-contextCh:
		return rctx
	default:
		return new(ReceiveContext)
	}
}

// releaseContext sends the message context back to the channel-based
// pool. A context stashed by the actor (ctx.Stash()) is still owned by
// the stash buffer and must not be returned. If the pool is full, the
// context is dropped for GC collection.
func releaseContext(rctx *ReceiveContext) {
	if rctx.stashed {
		return
	}
	rctx.reset()
	select {
	case contextCh <- rctx:
	default:
	}
}
