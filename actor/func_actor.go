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
)

// ReceiveFunc handles one message. Return an error to fail the sender's
// Ask; use the context to respond, stop, or schedule notifications.
type ReceiveFunc = func(ctx *ReceiveContext) error

// PreStartFunc defines the PreStart hook for a function-backed actor
type PreStartFunc = func(ctx context.Context) error

// PostStopFunc defines the PostStop hook for a function-backed actor
type PostStopFunc = func(ctx context.Context) error

// FuncOption is the interface that applies a FuncActor option.
type FuncOption interface {
	// Apply sets the Option value of a config.
	Apply(config *funcConfig)
}

var _ FuncOption = funcOption(nil)

// funcOption implements the FuncOption interface.
type funcOption func(config *funcConfig)

// Apply implementation
func (f funcOption) Apply(c *funcConfig) {
	f(c)
}

type funcConfig struct {
	preStart PreStartFunc
	postStop PostStopFunc
}

// WithPreStartFunc defines the PreStart hook
func WithPreStartFunc(fn PreStartFunc) FuncOption {
	return funcOption(func(config *funcConfig) {
		config.preStart = fn
	})
}

// WithPostStopFunc defines the PostStop hook
func WithPostStopFunc(fn PostStopFunc) FuncOption {
	return funcOption(func(config *funcConfig) {
		config.postStop = fn
	})
}

// FuncActor adapts plain functions into an Actor. Useful for small
// actors and tests that do not warrant a dedicated type.
type FuncActor struct {
	receiveFunc ReceiveFunc
	config      *funcConfig
}

// enforce compilation error
var _ Actor = (*FuncActor)(nil)

// NewFuncActor creates an actor from the given receive function.
func NewFuncActor(receiveFunc ReceiveFunc, opts ...FuncOption) *FuncActor {
	config := &funcConfig{}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return &FuncActor{
		receiveFunc: receiveFunc,
		config:      config,
	}
}

// PreStart pre-starts the actor.
func (x *FuncActor) PreStart(ctx *Context) error {
	if x.config.preStart != nil {
		return x.config.preStart(ctx.Context())
	}
	return nil
}

// Receive processes any message dropped into the actor mailbox.
func (x *FuncActor) Receive(ctx *ReceiveContext) {
	if err := x.receiveFunc(ctx); err != nil {
		ctx.Err(err)
	}
}

// PostStop is executed when the actor is shutting down.
func (x *FuncActor) PostStop(ctx *Context) error {
	if x.config.postStop != nil {
		return x.config.postStop(ctx.Context())
	}
	return nil
}
