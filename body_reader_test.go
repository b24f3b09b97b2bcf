/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/badu/cadente/header"
)

func TestBodyReaderFixedLengthExactBoundary(t *testing.T) {
	src := bufio.NewReader(strings.NewReader("hello" + "GET / HTTP/1.1\r\n"))
	br := newBodyReader(src, bodyFixed, 5, nil)
	got, err := io.ReadAll(br)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
	// the next request line must still be intact in src for pipelining
	line, _ := src.ReadString('\n')
	if line != "GET / HTTP/1.1\r\n" {
		t.Fatalf("leaked bytes: %q", line)
	}
}

func TestBodyReaderFixedLengthShortReadIsUnexpectedEOF(t *testing.T) {
	src := bufio.NewReader(strings.NewReader("ab"))
	br := newBodyReader(src, bodyFixed, 5, nil)
	_, err := io.ReadAll(br)
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestBodyReaderChunkedWithTrailer(t *testing.T) {
	raw := "5\r\nhello\r\n0\r\nX-Trailer: done\r\n\r\n"
	src := bufio.NewReader(strings.NewReader(raw))
	var trailer header.Header
	br := newBodyReader(src, bodyChunked, -1, &trailer)
	got, err := io.ReadAll(br)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
	if trailer.Get("X-Trailer") != "done" {
		t.Fatalf("trailer = %+v", trailer)
	}
}

func TestBodyReaderReadAfterCloseFails(t *testing.T) {
	src := bufio.NewReader(strings.NewReader(""))
	br := newBodyReader(src, bodyNone, 0, nil)
	br.Close()
	buf := make([]byte, 1)
	if _, err := br.Read(buf); err != ErrBodyReadAfterClose {
		t.Fatalf("err = %v, want ErrBodyReadAfterClose", err)
	}
}
