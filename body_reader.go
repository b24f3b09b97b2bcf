/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"bufio"
	"io"
	"sync"

	"github.com/badu/cadente/header"
)

// bodyKind classifies how a message body is framed on the wire (spec.md
// §4.3).
type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyFixed
	bodyChunked
)

// BodyReader streams a request (or, for the client-facing test harness,
// response) body off the connection's buffered reader, decoding
// Content-Length or chunked framing transparently.
//
// Grounded on the teacher's body.go (body.Read/readLocked/readTrailer):
// the locking discipline, the "one excess byte read triggers early EOF"
// optimization, and the early-close draining policy are all carried
// forward. What changes is the framing decode itself: the teacher
// delegated to io.LimitedReader plus a package-level newChunkedReader;
// BodyReader inlines both cases using chunk.go's primitives, since
// Cadente has only one body kind to support per message instead of the
// teacher's request/response-shared transferReader abstraction.
type BodyReader struct {
	mu       sync.Mutex
	src      *bufio.Reader
	kind     bodyKind
	remain   int64 // bytes left for bodyFixed; current chunk remainder for bodyChunked
	sawEOF   bool
	closed   bool
	trailer  *header.Header // destination for a chunked body's trailer section, filled at EOF; may be nil
	onEOF    func()
	closing  bool // true if the connection will not be reused after this body
}

// newBodyReader constructs a BodyReader for the given framing. trailerOut,
// when non-nil, receives the parsed trailer section once the chunked body
// reaches EOF.
func newBodyReader(src *bufio.Reader, kind bodyKind, length int64, trailerOut *header.Header) *BodyReader {
	br := &BodyReader{src: src, kind: kind, trailer: trailerOut}
	if kind == bodyFixed {
		br.remain = length
	}
	if kind == bodyNone {
		br.sawEOF = true
	}
	return br
}

func (br *BodyReader) Read(p []byte) (int, error) {
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.closed {
		return 0, ErrBodyReadAfterClose
	}
	return br.readLocked(p)
}

func (br *BodyReader) readLocked(p []byte) (int, error) {
	if br.sawEOF {
		return 0, io.EOF
	}
	switch br.kind {
	case bodyFixed:
		return br.readFixedLocked(p)
	case bodyChunked:
		return br.readChunkedLocked(p)
	default:
		return br.src.Read(p)
	}
}

func (br *BodyReader) readFixedLocked(p []byte) (int, error) {
	if br.remain <= 0 {
		br.sawEOF = true
		br.hitEOF()
		return 0, io.EOF
	}
	if int64(len(p)) > br.remain {
		p = p[:br.remain]
	}
	n, err := br.src.Read(p)
	br.remain -= int64(n)
	if err == io.EOF && br.remain > 0 {
		err = io.ErrUnexpectedEOF
	}
	if err == nil && br.remain == 0 {
		err = io.EOF
		br.sawEOF = true
		br.hitEOF()
	}
	return n, err
}

func (br *BodyReader) readChunkedLocked(p []byte) (int, error) {
	if br.remain == 0 {
		size, err := readChunkSize(br.src)
		if err != nil {
			return 0, err
		}
		if size == 0 {
			if err := br.readTrailerLocked(); err != nil {
				br.closed = true
				return 0, err
			}
			br.sawEOF = true
			br.hitEOF()
			return 0, io.EOF
		}
		br.remain = size
	}
	if int64(len(p)) > br.remain {
		p = p[:br.remain]
	}
	n, err := br.src.Read(p)
	br.remain -= int64(n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err == nil && br.remain == 0 {
		if _, e := br.src.Discard(2); e != nil { // trailing CRLF after the chunk data
			return n, e
		}
	}
	return n, err
}

func (br *BodyReader) readTrailerLocked() error {
	peek, err := br.src.Peek(2)
	if err == nil && len(peek) == 2 && peek[0] == '\r' && peek[1] == '\n' {
		_, err = br.src.Discard(2)
		return err
	}
	t, err := parseHeaderSection(br.src)
	if err != nil {
		return err
	}
	if br.trailer != nil {
		*br.trailer = t
	}
	return nil
}

func (br *BodyReader) hitEOF() {
	if br.onEOF != nil {
		br.onEOF()
	}
}

// Closing reports whether Close gave up draining the body before reaching
// EOF, meaning the connection's framing is no longer known and it must not
// be reused for another request.
func (br *BodyReader) Closing() bool {
	br.mu.Lock()
	defer br.mu.Unlock()
	return br.closing
}

// Close drains any unread body (bounded, so a handler that ignores the
// body cannot be made to read an attacker-controlled amount of data
// before the connection can be reused) and marks the reader closed.
//
// Mirrors the teacher's body.Close three-way branch (already-EOF /
// connection-closing-anyway / bounded-drain), dropping the unbounded
// "fully consume" branch that the teacher defaulted to: cadente always
// bounds the drain, since an Engine embedder cannot be assumed to want
// unbounded connection reuse at the cost of unbounded wait time.
func (br *BodyReader) Close() error {
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.closed {
		return nil
	}
	defer func() { br.closed = true }()
	if br.sawEOF || br.closing {
		return nil
	}
	const maxDrain = 2 << 20
	n, err := io.CopyN(io.Discard, bodyReaderLocked{br}, maxDrain)
	if err == io.EOF {
		err = nil
	}
	if n == maxDrain {
		br.closing = true
	}
	return err
}

// bodyReaderLocked adapts BodyReader to io.Reader for internal draining
// calls made while br.mu is already held by the caller (Close).
type bodyReaderLocked struct{ br *BodyReader }

func (b bodyReaderLocked) Read(p []byte) (int, error) { return b.br.readLocked(p) }
