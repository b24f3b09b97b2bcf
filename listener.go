/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"crypto/tls"
	"net"
	"time"
)

// tcpKeepAliveListener wraps a net.Listener to enable TCP keep-alives on
// every accepted connection, grounded verbatim on the teacher's
// tcp_keep_alive_listener.go, generalized to accept any net.Listener
// (the teacher's version only wrapped *net.TCPListener directly) so it can
// also sit in front of a tlsListener.
type tcpKeepAliveListener struct {
	ln     net.Listener
	period time.Duration
}

func (l tcpKeepAliveListener) Accept() (net.Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	if tc, ok := c.(*net.TCPConn); ok {
		tc.SetKeepAlive(true)
		tc.SetKeepAlivePeriod(l.period)
	}
	return c, nil
}

func (l tcpKeepAliveListener) Close() error   { return l.ln.Close() }
func (l tcpKeepAliveListener) Addr() net.Addr { return l.ln.Addr() }

// tlsListener wraps a net.Listener and upgrades every accepted connection
// to TLS using cfg, deferring the handshake itself to Connection.serve
// (spec.md §4.1: "the handshake happens on the connection's own goroutine,
// never blocking Accept").
type tlsListener struct {
	net.Listener
	cfg *tls.Config
}

func (l tlsListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return tls.Server(c, l.cfg), nil
}
