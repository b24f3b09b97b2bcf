/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"bufio"
	"fmt"
	"io"

	"github.com/badu/cadente/header"
)

// Response is what application code builds and the connection's
// BodyWriter serializes onto the wire (spec.md §3). Unlike net/http's
// ResponseWriter, Response carries no implicit flush-on-first-write
// behavior and no Hijacker/CloseNotifier surface: the engine owns the
// connection lifecycle, application code only owns the message content.
//
// Grounded on the teacher's response.go/chunk_writer.go header-finalization
// logic (writeHeader: Content-Length autofill, chunked negotiation,
// Connection handling), adapted so the decision of "how is this body
// framed" is made once by BodyWriter rather than split between a
// chunkWriter and a response.
type Response struct {
	// StatusCode is the response status line code. Zero means StatusOK.
	StatusCode int

	// StatusText overrides the reason phrase; empty means StatusText(StatusCode).
	StatusText string

	// Header holds the response headers the application set explicitly.
	// The engine adds Date, Content-Length/Transfer-Encoding and
	// Connection itself at write time; setting them here is honored as an
	// override except where doing so would make the framing ambiguous
	// (spec.md §4.3 "conflicting framing is a protocol error").
	Header header.Header

	// Body, if non-nil, is copied to the client as the response body. Its
	// length need not be known in advance: when ContentLength is left at
	// 0 and Body is non-nil, the response is framed with
	// Transfer-Encoding: chunked for HTTP/1.1 clients.
	Body io.Reader

	// ContentLength, when positive, fixes the body framing to
	// Content-Length instead of chunked. The engine returns a framing
	// error if Body yields a different number of bytes.
	ContentLength int64

	// KeepAlive lets application code veto connection reuse even for a
	// request that would otherwise qualify, moving the "keep this
	// connection open" decision onto the Response rather than the
	// host/connection context (spec.md §9 Design Notes: "lives on
	// Response, not host or connection context"). NewResponse sets this
	// true; set it to false explicitly to force the connection closed
	// after this response regardless of protocol version or request
	// headers (spec.md §4.2 keep-alive policy).
	KeepAlive bool

	// Trailer, when non-empty, is written as a trailer section after a
	// chunked body; only meaningful when the response is chunked.
	Trailer header.Header
}

// NewResponse returns a Response ready for the application to populate,
// mirroring the teacher's pattern of a small literal-valued constructor.
func NewResponse(status int) *Response {
	return &Response{StatusCode: status, Header: header.New(8), KeepAlive: true}
}

func (resp *Response) statusLine() string {
	code := resp.StatusCode
	if code == 0 {
		code = StatusOK
	}
	text := resp.StatusText
	if text == "" {
		text = StatusText(code)
	}
	return fmt.Sprintf("HTTP/1.1 %d %s\r\n", code, text)
}

// writeStatusAndHeader writes the status line and every header field to w,
// in Header's insertion order, followed by the blank line that ends the
// header section. It does not write the body: BodyWriter handles framing
// and streaming separately so the same header path serves both
// Content-Length and chunked responses.
func (resp *Response) writeStatusAndHeader(w *bufio.Writer) error {
	if _, err := io.WriteString(w, resp.statusLine()); err != nil {
		return err
	}
	if err := resp.Header.Write(w, nil); err != nil {
		return err
	}
	_, err := w.Write(crlf)
	return err
}
