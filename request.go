/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"crypto/tls"
	"io"
	"net"

	"github.com/google/uuid"

	"github.com/badu/cadente/header"
)

// Request is an immutable view of a parsed request line, headers and body
// (spec.md §3). After handing a Request to application code through a
// Context, the engine changes only Trailer (filled in when a chunked Body
// reaches EOF) and, with AllowTrailerMerge, Header (trailer fields appended
// after the response is written); fields that look mutable (Body) are
// themselves single-use, single-reader streams, not re-assignable data.
//
// Grounded on the teacher's types_request.go Request struct, trimmed to
// what an embeddable engine needs: no multipart form parsing, no cookie
// jar, no outgoing-request fields (Close/TransferEncoding are inferred
// internally by the connection state machine instead of being writable
// knobs on the struct).
type Request struct {
	// Method is the request method, e.g. GET, POST, exactly as received;
	// the engine does not normalize its case.
	Method string

	// RawPath is the request-target exactly as it appeared on the wire,
	// including any query string.
	RawPath string

	// Path is RawPath with the query string (if any) removed. It is not
	// percent-decoded; application code decides whether and how to decode
	// segments.
	Path string

	// RawQuery is the portion of RawPath after the first '?', or empty.
	RawQuery string

	// ProtoMajor and ProtoMinor are the parsed HTTP version, e.g. 1 and 1
	// for "HTTP/1.1".
	ProtoMajor int
	ProtoMinor int

	// Header holds every request header in arrival order, duplicates
	// preserved (spec.md §3 invariant).
	Header header.Header

	// ContentLength is the number of bytes the engine knows Body will
	// yield: the fixed length for Content-Length bodies, 0 for bodiless
	// requests, and -1 for chunked bodies of unknown final length.
	ContentLength int64

	// Body streams the request body, if any. Reading exactly
	// ContentLength bytes (or to EOF for chunked bodies) and then closing
	// Body is required before the connection can serve the next request;
	// the connection's BodyReader enforces this draining itself so
	// application code that ignores Body does not wedge the connection.
	Body io.ReadCloser

	// Trailer is populated (for chunked bodies that carry one) only after
	// Body has been read to EOF. It is empty until then.
	Trailer header.Header

	// TraceID is a per-request identifier assigned at parse time, used for
	// log correlation and exposed to application code (spec.md DOMAIN
	// STACK).
	TraceID uuid.UUID

	// RemoteAddr is the client's address as accepted by the Listener.
	RemoteAddr net.Addr

	// LocalAddr is the address the connection was accepted on.
	LocalAddr net.Addr

	// TLS is non-nil when the request arrived over a TLS Endpoint.
	TLS *tls.ConnectionState

	closeRequested bool
	expectContinue bool
}

// ProtoAtLeast reports whether the request's HTTP version is at least
// major.minor, mirroring the teacher's Request.ProtoAtLeast.
func (r *Request) ProtoAtLeast(major, minor int) bool {
	return r.ProtoMajor > major || (r.ProtoMajor == major && r.ProtoMinor >= minor)
}

// ExpectsContinue reports whether the client sent Expect: 100-continue
// (spec.md §4.4).
func (r *Request) ExpectsContinue() bool {
	return r.expectContinue
}

// WantsClose reports whether the connection must close after this
// request's response is written: an explicit Connection: close, or an
// HTTP/1.0 request that did not ask to keep-alive (spec.md §4.5).
func (r *Request) WantsClose() bool {
	if r.closeRequested {
		return true
	}
	if !r.ProtoAtLeast(1, 1) {
		return !r.Header.HasToken(header.Connection, connectionKeepAlive)
	}
	return false
}
