/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"strings"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/badu/cadente/header"
)

// websocketGUID is the fixed RFC 6455 concatenation suffix used to derive
// Sec-WebSocket-Accept from the client's Sec-WebSocket-Key.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// Upgrader completes the WebSocket handshake itself (spec.md §4.7): unlike
// the gobwas/ws examples in the retrieval pack, which call
// ws.UpgradeHTTP(r, w) against a net/http.ResponseWriter, Cadente has no
// ResponseWriter to hand it — the engine hijacks its own Connection and
// writes the 101 response by hand, then uses gobwas/ws only for its
// lower-level frame codec (ws.ReadHeader/ws.WriteHeader via wsutil),
// grounded on the other_examples/ whisper-chat internal/ws server's use
// of the same library for frame I/O once a connection is already
// upgraded.
type Upgrader struct {
	// Protocols lists the application sub-protocols this engine is
	// willing to speak, advertised in Sec-WebSocket-Protocol if the
	// client's requested list intersects with it.
	Protocols []string
}

// Channel is a hijacked connection speaking the WebSocket framing
// protocol. It is returned to application code once Upgrade succeeds;
// from that point on the Connection's HTTP request/response loop no
// longer reads from or writes to this socket.
type Channel struct {
	conn io.ReadWriteCloser
	br   *bufio.Reader
}

// ReadMessage reads the next complete text or binary message, grounded on
// wsutil.ReadClientData's close/ping/pong bookkeeping.
func (c *Channel) ReadMessage() ([]byte, ws.OpCode, error) {
	return wsutil.ReadClientData(c.br)
}

// WriteMessage writes one message of the given opcode back to the peer.
func (c *Channel) WriteMessage(op ws.OpCode, data []byte) error {
	return wsutil.WriteServerMessage(c.conn, op, data)
}

// Close closes the underlying connection.
func (c *Channel) Close() error { return c.conn.Close() }

// Upgrade validates req as a WebSocket handshake request, writes the 101
// Switching Protocols response on the hijacked connection, and returns a
// Channel for framed I/O. Call it from inside a Context's handling code
// instead of Context.Respond; the Connection is hijacked as a side
// effect, so Respond must not be called afterward.
func (u *Upgrader) Upgrade(ctx *Context) (*Channel, error) {
	req := ctx.Request
	if !strings.EqualFold(req.Header.Get(header.Upgrade), "websocket") {
		return nil, ErrUpgradeFailed
	}
	if !req.Header.HasToken(header.Connection, "upgrade") {
		return nil, ErrUpgradeFailed
	}
	key := req.Header.Get(header.SecWebSocketKey)
	if key == "" {
		return nil, ErrUpgradeFailed
	}
	if req.Header.Get(header.SecWebSocketVersion) != "13" {
		return nil, ErrUpgradeFailed
	}

	offered := req.Header.Get(header.SecWebSocketProtocol)
	proto, mismatch := u.negotiateProtocol(offered)
	if mismatch {
		nc, _, err := ctx.conn.hijack()
		if err != nil {
			return nil, err
		}
		io.WriteString(nc, "HTTP/1.1 426 Upgrade Required\r\nContent-Length: 0\r\nConnection: close\r\n\r\n")
		nc.Close()
		return nil, ErrUpgradeFailed
	}

	nc, rw, err := ctx.conn.hijack()
	if err != nil {
		return nil, err
	}

	accept := acceptKey(key)
	var resp strings.Builder
	resp.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	resp.WriteString("Upgrade: websocket\r\n")
	resp.WriteString("Connection: Upgrade\r\n")
	resp.WriteString("Sec-WebSocket-Accept: " + accept + "\r\n")
	if proto != "" {
		resp.WriteString("Sec-WebSocket-Protocol: " + proto + "\r\n")
	}
	resp.WriteString("\r\n")

	if _, err := rw.Writer.WriteString(resp.String()); err != nil {
		nc.Close()
		return nil, err
	}
	if err := rw.Writer.Flush(); err != nil {
		nc.Close()
		return nil, err
	}
	return &Channel{conn: nc, br: rw.Reader}, nil
}

// negotiateProtocol picks the sub-protocol to echo back, grounded on
// spec.md §4.7: "echoed only if requested sub-protocol is in the
// client-offered list; mismatch yields 426 Upgrade Required". mismatch is
// true only when the engine has configured Protocols and the client
// offered a non-empty list with no overlap; an engine with no configured
// Protocols never rejects on sub-protocol grounds.
func (u *Upgrader) negotiateProtocol(requested string) (proto string, mismatch bool) {
	if requested == "" || len(u.Protocols) == 0 {
		return "", false
	}
	for _, want := range strings.Split(requested, ",") {
		want = strings.TrimSpace(want)
		for _, have := range u.Protocols {
			if strings.EqualFold(want, have) {
				return have, false
			}
		}
	}
	return "", true
}

// acceptKey derives Sec-WebSocket-Accept from a client's
// Sec-WebSocket-Key per RFC 6455 §1.3: base64(SHA1(key + GUID)).
func acceptKey(key string) string {
	h := sha1.New()
	io.WriteString(h, key)
	io.WriteString(h, websocketGUID)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
