/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"bufio"
	"bytes"
	"testing"
)

func TestBodyWriterClosesAfterExplicitKeepAliveFalse(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	resp := NewResponse(StatusOK)
	resp.KeepAlive = false

	w := NewBodyWriter(bw, resp, 1, 1, MethodGet, false)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !w.CloseAfter() {
		t.Fatal("CloseAfter() = false, want true when Response.KeepAlive is explicitly false")
	}
}

func TestBodyWriterKeepsAliveByDefaultOnHTTP11(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	resp := NewResponse(StatusOK)

	w := NewBodyWriter(bw, resp, 1, 1, MethodGet, false)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.CloseAfter() {
		t.Fatal("CloseAfter() = true, want false: NewResponse defaults KeepAlive true")
	}
}

func TestBodyWriterCloseOnServerErrorForces5xxClose(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	resp := NewResponse(StatusInternalServerError)

	w := NewBodyWriter(bw, resp, 1, 1, MethodGet, true)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !w.CloseAfter() {
		t.Fatal("CloseAfter() = false, want true: CloseOnServerError must close after a 5xx response")
	}
}

func TestBodyWriterLeavesConnectionOpenOn5xxWhenNotConfigured(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	resp := NewResponse(StatusInternalServerError)

	w := NewBodyWriter(bw, resp, 1, 1, MethodGet, false)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.CloseAfter() {
		t.Fatal("CloseAfter() = true, want false when CloseOnServerError is off")
	}
}
