/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/badu/cadente/cadentetest"
)

func TestEngineRoundTripsASimpleRequest(t *testing.T) {
	server, client := cadentetest.PipeConn()
	defer client.Close()

	e := NewEngine()
	go e.ServeConn(server, Endpoint{})

	go func() {
		c, err := e.GetContext(context.Background())
		if err != nil {
			t.Errorf("GetContext: %v", err)
			return
		}
		resp := NewResponse(StatusOK)
		resp.Body = strings.NewReader("hi there")
		resp.ContentLength = 8
		if err := c.Respond(resp); err != nil {
			t.Errorf("Respond: %v", err)
		}
	}()

	cc := cadentetest.NewClient(client)
	cc.SetDeadline(time.Now().Add(5 * time.Second))
	if err := cc.SendRequestLine(MethodGet, "/", "HTTP/1.1", "Host: example.com"); err != nil {
		t.Fatalf("SendRequestLine: %v", err)
	}

	status, err := cc.ReadStatusLine()
	if err != nil {
		t.Fatalf("ReadStatusLine: %v", err)
	}
	if status != "HTTP/1.1 200 OK" {
		t.Fatalf("status = %q", status)
	}

	for {
		line, err := cc.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if line == "" {
			break
		}
	}

	body := make([]byte, 8)
	if _, err := cc.Reader().Read(body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "hi there" {
		t.Fatalf("body = %q", body)
	}
}

func TestChunkedRequestTrailerIsVisibleAfterBodyEOF(t *testing.T) {
	server, client := cadentetest.PipeConn()
	defer client.Close()

	e := NewEngine()
	go e.ServeConn(server, Endpoint{})

	var gotReq *Request
	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := e.GetContext(context.Background())
		if err != nil {
			t.Errorf("GetContext: %v", err)
			return
		}
		io.ReadAll(c.Request.Body)
		gotReq = c.Request
		if err := c.Respond(NewResponse(StatusOK)); err != nil {
			t.Errorf("Respond: %v", err)
		}
	}()

	cc := cadentetest.NewClient(client)
	cc.SetDeadline(time.Now().Add(5 * time.Second))
	if err := cc.SendRequestLine(MethodPost, "/", "HTTP/1.1",
		"Host: example.com",
		"Transfer-Encoding: chunked",
		"Trailer: X-Checksum"); err != nil {
		t.Fatalf("SendRequestLine: %v", err)
	}
	if _, err := cc.Write([]byte("5\r\nhello\r\n0\r\nX-Checksum: abc123\r\n\r\n")); err != nil {
		t.Fatalf("write chunked body: %v", err)
	}

	if _, err := cc.ReadStatusLine(); err != nil {
		t.Fatalf("ReadStatusLine: %v", err)
	}
	for {
		line, err := cc.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if line == "" {
			break
		}
	}
	<-done

	if gotReq == nil {
		t.Fatal("handler never ran")
	}
	if got := gotReq.Trailer.Get("X-Checksum"); got != "abc123" {
		t.Fatalf("Request.Trailer[X-Checksum] = %q, want %q", got, "abc123")
	}
}

func TestAllowTrailerMergeAppendsTrailerOntoRequestHeader(t *testing.T) {
	server, client := cadentetest.PipeConn()
	defer client.Close()

	e := NewEngine(WithAllowTrailerMerge(true))
	go e.ServeConn(server, Endpoint{})

	var gotReq *Request
	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := e.GetContext(context.Background())
		if err != nil {
			t.Errorf("GetContext: %v", err)
			return
		}
		io.ReadAll(c.Request.Body)
		if err := c.Respond(NewResponse(StatusOK)); err != nil {
			t.Errorf("Respond: %v", err)
			return
		}
		// Respond blocks until the connection has finished writing the
		// response, by which point writeResponse has already merged the
		// trailer (if configured), so it's safe to inspect req here.
		gotReq = c.Request
	}()

	cc := cadentetest.NewClient(client)
	cc.SetDeadline(time.Now().Add(5 * time.Second))
	if err := cc.SendRequestLine(MethodPost, "/", "HTTP/1.1",
		"Host: example.com",
		"Transfer-Encoding: chunked",
		"Trailer: X-Checksum"); err != nil {
		t.Fatalf("SendRequestLine: %v", err)
	}
	if _, err := cc.Write([]byte("5\r\nhello\r\n0\r\nX-Checksum: abc123\r\n\r\n")); err != nil {
		t.Fatalf("write chunked body: %v", err)
	}

	if _, err := cc.ReadStatusLine(); err != nil {
		t.Fatalf("ReadStatusLine: %v", err)
	}
	for {
		line, err := cc.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if line == "" {
			break
		}
	}
	<-done

	if gotReq == nil {
		t.Fatal("handler never ran")
	}
	if got := gotReq.Header.Get("X-Checksum"); got != "abc123" {
		t.Fatalf("Request.Header[X-Checksum] = %q, want %q (AllowTrailerMerge should copy it)", got, "abc123")
	}
}
