/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"net"
	"sync"
	"time"
)

// Host binds one Endpoint to a Listener and a shared contextQueue, and
// tracks every live Connection it has accepted so Engine.Stop can wait for
// them to drain (spec.md §4.1, §4.8).
//
// Grounded on the teacher's Server type in types_server.go, split along
// the lines spec.md draws between an Engine (the facade application code
// holds) and the per-Endpoint listening loop underneath it; the teacher
// has one Server doing both jobs.
type Host struct {
	endpoint Endpoint
	engine   *Engine

	ln net.Listener

	mu      sync.Mutex
	conns   map[*Connection]struct{}
	closing bool
	stopCh  chan struct{}
}

func newHost(ep Endpoint, e *Engine) *Host {
	return &Host{
		endpoint: ep,
		engine:   e,
		conns:    make(map[*Connection]struct{}),
		stopCh:   make(chan struct{}),
	}
}

func (h *Host) listenAndServe() error {
	addr := net.JoinHostPort(h.endpoint.Address, itoa(int64(h.endpoint.Port)))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	var wrapped net.Listener = tcpKeepAliveListener{ln: ln, period: 3 * time.Minute}
	if h.endpoint.Scheme == SchemeTLS {
		wrapped = tlsListener{Listener: wrapped, cfg: h.endpoint.TLS.config()}
	}
	h.ln = wrapped

	var tempDelay time.Duration
	for {
		nc, err := h.ln.Accept()
		if err != nil {
			h.mu.Lock()
			closing := h.closing
			h.mu.Unlock()
			if closing {
				return ErrServerClosed
			}
			// Transient accept errors (EMFILE, ECONNABORTED, ...) are
			// retried with capped exponential backoff instead of killing
			// the listener (spec.md §4.1), grounded on the teacher's
			// Serve loop tempDelay 5ms->1s ladder.
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				h.logger().Warnf("cadente: accept error: %v; retrying in %v", err, tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0
		conn := newConnection(nc, h)
		h.trackConn(conn, true)
		go conn.serve()
	}
}

func (h *Host) trackConn(c *Connection, add bool) {
	h.mu.Lock()
	if add {
		h.conns[c] = struct{}{}
	} else {
		delete(h.conns, c)
	}
	h.mu.Unlock()

	if m := h.engine.metrics(); m != nil {
		if add {
			m.AcceptedTotal.Inc()
			m.ActiveConnections.Inc()
		} else {
			m.ClosedTotal.Inc()
			m.ActiveConnections.Dec()
		}
	}
}

func (h *Host) connClosed(c *Connection) { h.trackConn(c, false) }

func (h *Host) stop() {
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()
	close(h.stopCh)
	if h.ln != nil {
		h.ln.Close()
	}
}

func (h *Host) stopped() <-chan struct{} { return h.stopCh }

func (h *Host) stopping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closing
}

func (h *Host) activeConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Host) enqueue(ctx *Context) bool { return h.engine.enqueue(ctx) }

func (h *Host) logger() Logger { return h.engine.logger() }

func (h *Host) handshakeTimeout() time.Duration  { return h.engine.opts.TLSHandshakeTimeout }
func (h *Host) idleTimeout() time.Duration       { return h.engine.opts.IdleTimeout }
func (h *Host) readHeaderTimeout() time.Duration { return h.engine.opts.ReadHeaderTimeout }
func (h *Host) readTimeout() time.Duration       { return h.engine.opts.ReadTimeout }
func (h *Host) writeTimeout() time.Duration      { return h.engine.opts.WriteTimeout }
func (h *Host) maxRequestLineBytes() int         { return h.engine.opts.MaxRequestLineBytes }
func (h *Host) maxHeaderBytes() int              { return h.engine.opts.MaxHeaderBytes }
func (h *Host) responseTimeout() time.Duration   { return h.engine.opts.ResponseTimeout }
func (h *Host) closeOnServerError() bool         { return h.engine.opts.CloseOnServerError }
func (h *Host) acceptBareLF() bool               { return h.engine.opts.AcceptBareLF }
func (h *Host) allowTrailerMerge() bool          { return h.engine.opts.AllowTrailerMerge }
