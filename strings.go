/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

// HTTP methods (spec.md §6.1 references these only by name; listed here so
// the engine and its tests share one vocabulary, as the teacher does in
// types_strings.go).
const (
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodConnect = "CONNECT"
	MethodOptions = "OPTIONS"
	MethodTrace   = "TRACE"
)

const (
	proto10 = "HTTP/1.0"
	proto11 = "HTTP/1.1"

	connectionClose     = "close"
	connectionKeepAlive = "keep-alive"
	transferChunked     = "chunked"
	transferIdentity    = "identity"

	expectContinue = "100-continue"
)

// CRLF-related byte constants reused throughout the wire codec.
var (
	crlf       = []byte("\r\n")
	doubleCrlf = []byte("\r\n\r\n")
)
