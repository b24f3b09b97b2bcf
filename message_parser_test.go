/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"bufio"
	"strings"
	"testing"

	"github.com/badu/cadente/header"
)

func TestParseRequestFixedLength(t *testing.T) {
	raw := "POST /widgets?x=1 HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nhello"
	req, kind, length, err := parseRequest(bufio.NewReader(strings.NewReader(raw)), defaultMaxRequestLineBytes, defaultMaxHeaderBytes, false)
	if err != nil {
		t.Fatalf("parseRequest: %v", err)
	}
	if req.Method != MethodPost || req.Path != "/widgets" || req.RawQuery != "x=1" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if kind != bodyFixed || length != 5 {
		t.Fatalf("kind=%v length=%d", kind, length)
	}
}

func TestParseRequestMissingHostIsRejected(t *testing.T) {
	raw := "GET / HTTP/1.1\r\n\r\n"
	_, _, _, err := parseRequest(bufio.NewReader(strings.NewReader(raw)), defaultMaxRequestLineBytes, defaultMaxHeaderBytes, false)
	if err != ErrMissingHost {
		t.Fatalf("err = %v, want ErrMissingHost", err)
	}
}

func TestFramingRejectsContentLengthAndTransferEncodingTogether(t *testing.T) {
	h := header.New(0)
	h.Add(header.ContentLength, "5")
	h.Add(header.TransferEncoding, "chunked")
	_, _, err := framing(h, 1, 1)
	if err != ErrBothContentLengthAndChunked {
		t.Fatalf("err = %v, want ErrBothContentLengthAndChunked", err)
	}
}

func TestFramingChunkedOnHTTP10IsRejected(t *testing.T) {
	h := header.New(0)
	h.Add(header.TransferEncoding, "chunked")
	_, _, err := framing(h, 1, 0)
	if err == nil {
		t.Fatal("expected error for chunked Transfer-Encoding on HTTP/1.0")
	}
}

func TestObsoleteLineFoldingIsRejected(t *testing.T) {
	raw := "X-Foo: bar\r\n baz\r\n\r\n"
	_, err := parseHeaderSection(bufio.NewReader(strings.NewReader(raw)))
	if err == nil {
		t.Fatal("expected error for folded header line")
	}
}

func TestBareLFRejectedByDefault(t *testing.T) {
	raw := "GET / HTTP/1.1\nHost: example.com\n\n"
	_, _, _, err := parseRequest(bufio.NewReader(strings.NewReader(raw)), defaultMaxRequestLineBytes, defaultMaxHeaderBytes, false)
	if err == nil {
		t.Fatal("expected error for bare LF line terminator")
	}
}

func TestBareLFAcceptedWhenConfigured(t *testing.T) {
	raw := "GET / HTTP/1.1\nHost: example.com\n\n"
	req, _, _, err := parseRequest(bufio.NewReader(strings.NewReader(raw)), defaultMaxRequestLineBytes, defaultMaxHeaderBytes, true)
	if err != nil {
		t.Fatalf("parseRequest: %v", err)
	}
	if req.Header.Get(header.Host) != "example.com" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestRequestLineTooLongIsDistinctFromHeadersTooLarge(t *testing.T) {
	raw := "GET /" + strings.Repeat("x", 100) + " HTTP/1.1\r\nHost: h\r\n\r\n"
	_, _, _, err := parseRequest(bufio.NewReader(strings.NewReader(raw)), 10, defaultMaxHeaderBytes, false)
	if err != ErrRequestLineTooLarge {
		t.Fatalf("err = %v, want ErrRequestLineTooLarge", err)
	}

	raw = "GET / HTTP/1.1\r\nHost: h\r\nX-Long: " + strings.Repeat("x", 100) + "\r\n\r\n"
	_, _, _, err = parseRequest(bufio.NewReader(strings.NewReader(raw)), defaultMaxRequestLineBytes, 20, false)
	if err != ErrHeadersTooLarge {
		t.Fatalf("err = %v, want ErrHeadersTooLarge", err)
	}
}

func TestSplitRequestTarget(t *testing.T) {
	path, query := splitRequestTarget("/a/b?x=1&y=2")
	if path != "/a/b" || query != "x=1&y=2" {
		t.Fatalf("path=%q query=%q", path, query)
	}
	path, query = splitRequestTarget("/no-query")
	if path != "/no-query" || query != "" {
		t.Fatalf("path=%q query=%q", path, query)
	}
}
