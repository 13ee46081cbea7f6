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

	"github.com/troupe-io/troupe/log"
)

// Context is the handle passed to the lifecycle hooks PreStart, PreStop
// and PostStop.
type Context struct {
	ctx     context.Context
	manager *manager
}

func newContext(ctx context.Context, m *manager) *Context {
	return &Context{ctx: ctx, manager: m}
}

// Context returns the go context of the lifecycle transition.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Self mints a fresh strong address to this actor. The caller owns the
// handle and must Close it. During PreStart, messages sent through it
// enqueue normally and are processed after the hook returns.
func (c *Context) Self() *Address {
	return c.manager.newStrongAddress()
}

// SelfWeak returns a weak address to this actor.
func (c *Context) SelfWeak() *WeakAddress {
	return c.manager.newWeakAddress()
}

// ActorName returns the name of the actor.
func (c *Context) ActorName() string {
	return c.manager.name
}

// Logger returns the logger of the actor.
func (c *Context) Logger() log.Logger {
	return c.manager.logger
}
