/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import "errors"

var (
	// ErrServerClosed is returned by Engine.Start after Stop has been called.
	ErrServerClosed = errors.New("cadente: engine closed")

	// ErrCancelled is returned by GetContext when the engine stops, or the
	// caller's ctx is cancelled, while a caller is suspended waiting for a
	// Context, and by Context.Respond once the connection has stopped
	// waiting for the response. It is distinct from other errors so callers
	// can tell a deliberate shutdown apart from a real failure (spec.md §7).
	ErrCancelled = errors.New("cadente: GetContext cancelled by engine stop")

	// ErrHijacked is returned by Context.Respond and Upgrader.Upgrade once the
	// connection has been relinquished to a WebSocket upgrade.
	ErrHijacked = errors.New("cadente: connection has been relinquished")

	// ErrHeadersSent is returned by Context.Respond when a response has
	// already been handed over for that Context. Response headers are not
	// locked once written: changing them afterwards returns no error and has
	// no effect on the wire.
	ErrHeadersSent = errors.New("cadente: headers already sent")

	// ErrContentLengthMismatch is returned by BodyWriter.Write when a write
	// would exceed the declared Content-Length (nothing of that write is
	// sent), and by BodyWriter.Close when fewer bytes were written.
	ErrContentLengthMismatch = errors.New("cadente: wrote a different number of bytes than the declared Content-Length")

	// ErrBodyReadAfterClose is returned by BodyReader.Read after Close.
	ErrBodyReadAfterClose = errors.New("cadente: invalid read on closed body")

	// ErrRequestLineTooLarge is returned when the request line exceeds
	// MaxRequestLineBytes (surfaced to the wire as 414, spec.md §4.3).
	ErrRequestLineTooLarge = errors.New("cadente: request line too large")

	// ErrHeadersTooLarge is returned when the header section exceeds
	// MaxHeaderBytes (surfaced to the wire as 431, spec.md §4.3).
	ErrHeadersTooLarge = errors.New("cadente: header section too large")

	// ErrBothContentLengthAndChunked is a protocol error: a request carried
	// both Content-Length and Transfer-Encoding (spec.md §4.3).
	ErrBothContentLengthAndChunked = errors.New("cadente: request has both Content-Length and Transfer-Encoding")

	// ErrMissingHost is a protocol error: an HTTP/1.1 request without a Host
	// header (spec.md §6.1).
	ErrMissingHost = errors.New("cadente: missing required Host header")

	// ErrUpgradeFailed covers malformed or mismatched WebSocket handshakes
	// (spec.md §4.7, §7).
	ErrUpgradeFailed = errors.New("cadente: websocket upgrade failed")

	// ErrExpectationFailed describes a request that names an Expect value
	// other than 100-continue (spec.md §7). The connection answers such a
	// request with 417 Expectation Failed itself; no call returns this error.
	ErrExpectationFailed = errors.New("cadente: unsupported Expect value")
)

// badRequestError is a literal string (used verbatim in the best-effort 400
// response) describing why a request was rejected. It must never embed user
// input or another error's message wholesale.
type badRequestError string

func (e badRequestError) Error() string { return "cadente: bad request: " + string(e) }
