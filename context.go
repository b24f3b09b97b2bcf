/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import "sync/atomic"

// Context bundles one parsed Request with the means to send its Response,
// and is the unit of work the engine hands to application code through
// GetContext (spec.md §4.6). It replaces the teacher's
// Handler.ServeHTTP(ResponseWriter, *Request) callback pair with a single
// pulled value, per spec.md §9's redesign note.
type Context struct {
	Request *Request

	conn      *Connection
	aborted   int32 // atomic; set when the connection stops waiting for Respond (engine stop or ResponseTimeout)
	responded int32 // atomic; set by the first Respond call
}

// Respond sends resp as the answer to c.Request. It must be called at
// most once; calling it a second time returns ErrHeadersSent. The engine
// itself decides, after Respond returns, whether the connection is kept
// open for the next request or closed, based on resp, the request's
// framing, and the engine's keep-alive policy (spec.md §4.5).
func (c *Context) Respond(resp *Response) error {
	if !atomic.CompareAndSwapInt32(&c.responded, 0, 1) {
		return ErrHeadersSent
	}
	return c.conn.respond(c, resp)
}

// Aborted reports whether the connection has stopped waiting for this
// Context's response (the engine stopped, or ResponseTimeout expired) —
// application code can use this to skip expensive work before calling
// Respond on a connection that can no longer receive it. A peer that
// disconnects while the Context is waiting is not detected and does not
// set it.
func (c *Context) Aborted() bool {
	return atomic.LoadInt32(&c.aborted) != 0
}

func (c *Context) markAborted() {
	atomic.StoreInt32(&c.aborted, 1)
}
