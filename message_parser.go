/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/badu/cadente/header"
)

// Limits bound request-line and header-section sizes to protect against
// unbounded memory growth from a slow or hostile client (spec.md §6.3).
// Grounded on the teacher's DefaultMaxHeaderBytes policy in
// types_server.go, carried forward as engine-wide defaults rather than a
// single global var so multiple Engines in one process can differ.
const (
	defaultMaxRequestLineBytes = 8 << 10
	defaultMaxHeaderBytes      = 1 << 20
)

// parseRequestLine reads and validates the request line (method,
// request-target, HTTP-version), per RFC 7230 §3.1.1.
func parseRequestLine(r *bufio.Reader, maxLen int, acceptBareLF bool) (method, target, proto string, err error) {
	line, err := readLimitedLine(r, maxLen, acceptBareLF, ErrRequestLineTooLarge)
	if err != nil {
		return "", "", "", err
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", "", badRequestError("malformed request line")
	}
	return parts[0], parts[1], parts[2], nil
}

// readRawLine reads one line up to and including its terminator, bounded
// to maxLen bytes (terminator included) so a client that never sends a newline cannot
// grow the buffer without limit (spec.md §6.2: MaxRequestLineBytes /
// MaxHeaderBytes). The terminator itself is left on the end of the
// returned slice so the caller can validate it was CRLF.
func readRawLine(r *bufio.Reader, maxLen int, tooLarge error) ([]byte, error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if len(buf) > maxLen {
			return nil, tooLarge
		}
		if err == nil {
			return buf, nil
		}
		if err != bufio.ErrBufferFull {
			return nil, err
		}
	}
}

// stripLineTerminator removes a line's trailing CRLF, rejecting a bare LF
// terminator unless acceptBareLF is set (spec.md §4.3: "tolerates bare LF
// only if configured (default off)").
func stripLineTerminator(raw []byte, acceptBareLF bool) ([]byte, error) {
	if len(raw) == 0 || raw[len(raw)-1] != '\n' {
		return nil, badRequestError("line missing terminator")
	}
	raw = raw[:len(raw)-1]
	if len(raw) > 0 && raw[len(raw)-1] == '\r' {
		return raw[:len(raw)-1], nil
	}
	if !acceptBareLF {
		return nil, badRequestError("bare LF line terminator not accepted")
	}
	return raw, nil
}

func readLimitedLine(r *bufio.Reader, maxLen int, acceptBareLF bool, tooLarge error) (string, error) {
	raw, err := readRawLine(r, maxLen, tooLarge)
	if err != nil {
		return "", err
	}
	line, err := stripLineTerminator(raw, acceptBareLF)
	if err != nil {
		return "", err
	}
	return string(line), nil
}

// parseProtoVersion parses "HTTP/1.1"-shaped strings.
func parseProtoVersion(proto string) (major, minor int, ok bool) {
	if !strings.HasPrefix(proto, "HTTP/") {
		return 0, 0, false
	}
	rest := proto[len("HTTP/"):]
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return 0, 0, false
	}
	maj, err1 := strconv.Atoi(rest[:dot])
	min, err2 := strconv.Atoi(rest[dot+1:])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return maj, min, true
}

// parseHeaderSection reads header fields up to (and consuming) the
// terminating blank line, rejecting obsolete line folding (spec.md §4.3:
// "a folded header line is a protocol error, not silently joined").
//
// Grounded on the teacher's hdr.NewHeaderReader / ReadHeader, which
// tolerates folding by joining continuation lines; Cadente's redesign
// flag requires the stricter RFC 7230 §3.2.4 behavior instead.
func parseHeaderSection(r *bufio.Reader) (header.Header, error) {
	return parseHeaderSectionLimited(r, defaultMaxHeaderBytes, false)
}

func parseHeaderSectionLimited(r *bufio.Reader, maxBytes int, acceptBareLF bool) (header.Header, error) {
	h := header.New(16)
	total := 0
	for {
		raw, err := readRawLine(r, maxBytes-total, ErrHeadersTooLarge)
		if err != nil {
			return h, err
		}
		total += len(raw)
		if total > maxBytes {
			return h, ErrHeadersTooLarge
		}
		lineBytes, err := stripLineTerminator(raw, acceptBareLF)
		if err != nil {
			return h, err
		}
		line := string(lineBytes)
		if line == "" {
			return h, nil
		}
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			return h, badRequestError("obsolete line folding is not supported")
		}
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return h, badRequestError("malformed header field")
		}
		name := line[:colon]
		value := strings.TrimSpace(line[colon+1:])
		if !header.IsValidName(name) || !header.IsValidValue(value) {
			return h, badRequestError("invalid header field")
		}
		h.Add(name, value)
	}
}

// framing derived from Content-Length/Transfer-Encoding per spec.md §4.3:
// both present together is a protocol error, Transfer-Encoding: chunked
// takes precedence when alone, and HTTP/1.0 never gets chunked framing.
func framing(h header.Header, protoMajor, protoMinor int) (kind bodyKind, length int64, err error) {
	hasCL := h.Has(header.ContentLength)
	hasTE := h.Has(header.TransferEncoding)
	if hasCL && hasTE {
		return bodyNone, 0, ErrBothContentLengthAndChunked
	}
	if hasTE {
		if protoMajor == 1 && protoMinor == 0 {
			return bodyNone, 0, badRequestError("chunked transfer-encoding on HTTP/1.0")
		}
		if !h.HasToken(header.TransferEncoding, transferChunked) {
			return bodyNone, 0, badRequestError("unsupported transfer-encoding")
		}
		return bodyChunked, -1, nil
	}
	if hasCL {
		n, err := strconv.ParseInt(h.Get(header.ContentLength), 10, 64)
		if err != nil || n < 0 {
			return bodyNone, 0, badRequestError("malformed content-length")
		}
		if n == 0 {
			return bodyNone, 0, nil
		}
		return bodyFixed, n, nil
	}
	return bodyNone, 0, nil
}

// parseRequest reads one complete request line + header section from src
// and returns a Request whose Body is not yet attached (the caller wires
// a BodyReader once framing is known, since BodyReader needs a pointer
// to the Request's Trailer field).
func parseRequest(src *bufio.Reader, maxLineLen, maxHeaderBytes int, acceptBareLF bool) (*Request, bodyKind, int64, error) {
	method, target, proto, err := parseRequestLine(src, maxLineLen, acceptBareLF)
	if err != nil {
		return nil, bodyNone, 0, err
	}
	major, minor, ok := parseProtoVersion(proto)
	if !ok {
		return nil, bodyNone, 0, badRequestError("malformed HTTP version")
	}
	h, err := parseHeaderSectionLimited(src, maxHeaderBytes, acceptBareLF)
	if err != nil {
		return nil, bodyNone, 0, err
	}
	if major == 1 && minor >= 1 && h.Get(header.Host) == "" {
		return nil, bodyNone, 0, ErrMissingHost
	}
	kind, length, err := framing(h, major, minor)
	if err != nil {
		return nil, bodyNone, 0, err
	}
	path, rawQuery := splitRequestTarget(target)
	req := &Request{
		Method:         method,
		RawPath:        target,
		Path:           path,
		RawQuery:       rawQuery,
		ProtoMajor:     major,
		ProtoMinor:     minor,
		Header:         h,
		ContentLength:  length,
		TraceID:        uuid.New(),
		closeRequested: h.HasToken(header.Connection, connectionClose),
		expectContinue: strings.EqualFold(h.Get(header.Expect), expectContinue),
	}
	return req, kind, length, nil
}
