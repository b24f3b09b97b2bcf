/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/badu/cadente/header"
)

// Connection is the per-socket state machine: it parses one request at a
// time off the wire, pushes a Context for it onto the host's
// contextQueue, then blocks until Respond is called before it will parse
// the next one (spec.md §4.2: "HTTP/1.1 has no concurrent in-flight
// requests per connection; pipelining is accepted on read but responses
// are still strictly ordered").
//
// Grounded on the teacher's conn.go serve loop: the per-iteration shape
// (read request -> run handler -> finishRequest -> decide reuse ->
// StateIdle -> wait for next byte with an idle deadline) is preserved.
// What's gone is the handler callback (serverHandler{srv}.ServeHTTP) and
// the 100-continue/StateX bookkeeping specific to net/http's exported
// ConnState hook; those become, respectively, a queue push/response wait
// and a call through the engine's pluggable Logger.
type Connection struct {
	netConn net.Conn
	raw     *bufio.Reader
	bufW    *bufio.Writer
	tlsConn *tls.Conn
	tlsInfo *tls.ConnectionState

	host *Host

	mu         sync.Mutex
	hijacked   bool
	respCh     chan *Response // the pending Context's Respond() delivers here
	respDoneCh chan error     // serveOne signals the write result back to Respond's caller
	abortCh    chan struct{}  // closed when serveOne gives up waiting on respCh
}

func newConnection(nc net.Conn, h *Host) *Connection {
	c := &Connection{
		netConn:    nc,
		host:       h,
		respCh:     make(chan *Response, 1),
		respDoneCh: make(chan error, 1),
	}
	if tc, ok := nc.(*tls.Conn); ok {
		c.tlsConn = tc
	}
	return c
}

// serve runs the connection's full lifetime: optional TLS handshake, then
// request/response cycles until the connection closes or the engine
// stops. The Host's accept loop runs it on its own goroutine;
// Engine.ServeConn runs it on the caller's goroutine.
func (c *Connection) serve() {
	defer func() {
		if err := recover(); err != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			c.host.logger().Errorf("cadente: panic serving %s: %v\n%s", c.netConn.RemoteAddr(), err, buf)
		}
		if !c.isHijacked() {
			c.netConn.Close()
		}
		c.host.connClosed(c)
	}()

	if c.tlsConn != nil {
		deadline := c.host.handshakeTimeout()
		if deadline != 0 {
			c.netConn.SetDeadline(time.Now().Add(deadline))
		}
		if err := c.tlsConn.Handshake(); err != nil {
			c.host.logger().Warnf("cadente: TLS handshake error from %s: %v", c.netConn.RemoteAddr(), err)
			return
		}
		state := c.tlsConn.ConnectionState()
		c.tlsInfo = &state
		c.netConn.SetDeadline(time.Time{})
	}

	c.raw = bufio.NewReaderSize(c.netConn, 4<<10)
	c.bufW = bufio.NewWriterSize(c.netConn, 4<<10)

	for {
		if d := c.host.idleTimeout(); d != 0 {
			c.netConn.SetReadDeadline(time.Now().Add(d))
		}
		keepGoing, err := c.serveOne()
		if err != nil {
			if !isCommonCloseError(err) && !c.isHijacked() {
				c.writeBestEffortError(err)
			}
			return
		}
		if !keepGoing {
			return
		}
		if c.host.stopping() {
			return
		}
	}
}

// serveOne parses and answers exactly one request, returning whether the
// connection should be kept open for another.
func (c *Connection) serveOne() (bool, error) {
	if d := c.host.readHeaderTimeout(); d != 0 {
		c.netConn.SetReadDeadline(time.Now().Add(d))
	}

	req, kind, length, err := parseRequest(c.raw, c.host.maxRequestLineBytes(), c.host.maxHeaderBytes(), c.host.acceptBareLF())
	if err != nil {
		return false, err
	}
	req.RemoteAddr = c.netConn.RemoteAddr()
	req.LocalAddr = c.netConn.LocalAddr()
	req.TLS = c.tlsInfo

	if req.Header.Get(header.Expect) != "" && !req.expectContinue {
		c.writeStatusOnly(StatusExpectationFailed)
		return false, nil
	}

	// BodyReader writes the parsed trailer directly into req.Trailer
	// through this pointer, so it is visible to the application as soon
	// as the chunked body reaches EOF (spec.md §3: Request.Trailer "is
	// populated...only after Body has been read to EOF").
	body := newBodyReader(c.raw, kind, length, &req.Trailer)
	req.Body = body

	if req.expectContinue {
		// Send the interim response immediately so the client starts
		// streaming its body without waiting out a timer (spec.md
		// §4.4); application code still answers the request itself
		// once it pulls this Context and reads or skips the body.
		if _, err := io.WriteString(c.netConn, "HTTP/1.1 100 Continue\r\n\r\n"); err != nil {
			return false, err
		}
	}

	if d := c.host.readTimeout(); d != 0 {
		c.netConn.SetReadDeadline(time.Now().Add(d))
	}
	c.netConn.SetWriteDeadline(time.Time{})

	c.mu.Lock()
	c.abortCh = make(chan struct{})
	c.mu.Unlock()

	ctx := &Context{Request: req, conn: c}
	queuedAt := time.Now()
	if ok := c.host.enqueue(ctx); !ok {
		return false, ErrServerClosed
	}

	var timeoutCh <-chan time.Time
	if d := c.host.responseTimeout(); d != 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case resp := <-c.respCh:
		err := c.writeResponse(req, body, resp)
		c.respDoneCh <- err
		if m := c.host.engine.metrics(); m != nil {
			m.RequestDuration.Observe(time.Since(queuedAt).Seconds())
		}
		if err != nil {
			return false, err
		}
	case <-c.host.stopped():
		c.mu.Lock()
		close(c.abortCh)
		c.mu.Unlock()
		ctx.markAborted()
		return false, ErrServerClosed
	case <-timeoutCh:
		c.mu.Lock()
		close(c.abortCh)
		c.mu.Unlock()
		ctx.markAborted()
		if !c.isHijacked() {
			c.writeTimeoutResponse()
		}
		return false, nil
	}

	closeAfter := req.WantsClose()
	return !closeAfter, nil
}

// respond is called by Context.Respond. It hands resp to the blocked
// serveOne goroutine and waits for the write to finish so application
// code observes any write error synchronously, mirroring the teacher's
// finishRequest being called inline from the serve loop rather than from
// a detached goroutine.
func (c *Connection) respond(ctx *Context, resp *Response) error {
	if c.isHijacked() {
		return ErrHijacked
	}
	if ctx.Aborted() {
		return ErrCancelled
	}
	c.mu.Lock()
	abortCh := c.abortCh
	c.mu.Unlock()

	select {
	case c.respCh <- resp:
	case <-abortCh:
		return ErrCancelled
	default:
		return ErrHeadersSent
	}
	select {
	case err := <-c.respDoneCh:
		return err
	case <-abortCh:
		return ErrCancelled
	}
}

func (c *Connection) writeResponse(req *Request, body *BodyReader, resp *Response) error {
	if d := c.host.writeTimeout(); d != 0 {
		c.netConn.SetWriteDeadline(time.Now().Add(d))
	}
	defer c.netConn.SetWriteDeadline(time.Time{})

	bw := NewBodyWriter(c.bufW, resp, req.ProtoMajor, req.ProtoMinor, req.Method, c.host.closeOnServerError())
	if resp.Body != nil {
		if _, err := io.Copy(bw, resp.Body); err != nil {
			return err
		}
	}
	if err := bw.Close(); err != nil {
		return err
	}
	if err := c.bufW.Flush(); err != nil {
		return err
	}
	if bw.CloseAfter() {
		return errConnectionClosing
	}
	// Drain any request body the handler did not read, bounded, so the
	// connection can be reused for the next request (teacher's
	// res.finishRequest draining behavior).
	if err := body.Close(); err != nil {
		return err
	}
	// A chunked request's trailer only ever touches Request.Header when
	// the engine is configured to permit it; otherwise it stays readable
	// from Request.Trailer alone (spec.md §4.3, §6.2, §8).
	if c.host.allowTrailerMerge() && req.Trailer.Len() > 0 {
		req.Trailer.Each(func(k, v string) { req.Header.Add(k, v) })
	}
	if body.Closing() {
		return errConnectionClosing
	}
	return nil
}

func (c *Connection) writeStatusOnly(status int) {
	fmt.Fprintf(c.netConn, "HTTP/1.1 %d %s\r\nContent-Length: 0\r\nConnection: close\r\n\r\n", status, StatusText(status))
}

func (c *Connection) writeBestEffortError(err error) {
	msg := "400 Bad Request"
	switch {
	case err == ErrRequestLineTooLarge:
		msg = "414 URI Too Long"
	case err == ErrHeadersTooLarge:
		msg = "431 Request Header Fields Too Large"
	case err == ErrMissingHost:
		msg = "400 Bad Request: missing Host header"
	}
	if v, ok := err.(badRequestError); ok {
		msg = "400 Bad Request: " + string(v)
	}
	fmt.Fprintf(c.netConn, "HTTP/1.1 %s\r\nContent-Length: 0\r\nConnection: close\r\n\r\n", msg)
}

func (c *Connection) isHijacked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hijacked
}

// hijack relinquishes the raw connection for a WebSocket upgrade (spec.md
// §4.7): the Connection state machine stops driving request parsing and
// hands the net.Conn plus its buffered reader/writer to the Upgrader.
func (c *Connection) hijack() (net.Conn, *bufio.ReadWriter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hijacked {
		return nil, nil, ErrHijacked
	}
	c.hijacked = true
	c.netConn.SetDeadline(time.Time{})
	return c.netConn, bufio.NewReadWriter(c.raw, c.bufW), nil
}

var errConnectionClosing = fmt.Errorf("cadente: connection closing after response")

func isCommonCloseError(err error) bool {
	if err == io.EOF || err == io.ErrUnexpectedEOF || err == errConnectionClosing {
		return true
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return true
	}
	return false
}
