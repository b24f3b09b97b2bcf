/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"context"
	"testing"
	"time"

	"github.com/badu/cadente/cadentetest"
)

func TestAcceptKeyMatchesRFC6455Example(t *testing.T) {
	// The canonical worked example from RFC 6455 §1.3.
	const key = "dGhlIHNhbXBsZSBub25jZQ=="
	const want = "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got := acceptKey(key); got != want {
		t.Fatalf("acceptKey(%q) = %q, want %q", key, got, want)
	}
}

func TestNegotiateProtocolPicksOverlap(t *testing.T) {
	u := &Upgrader{Protocols: []string{"chat", "superchat"}}
	proto, mismatch := u.negotiateProtocol("superchat, chat")
	if mismatch || proto != "superchat" {
		t.Fatalf("proto=%q mismatch=%v, want proto=%q mismatch=false", proto, mismatch, "superchat")
	}
}

func TestNegotiateProtocolReportsMismatchOnNoOverlap(t *testing.T) {
	u := &Upgrader{Protocols: []string{"chat"}}
	_, mismatch := u.negotiateProtocol("bogus")
	if !mismatch {
		t.Fatal("mismatch = false, want true when requested protocol has no overlap")
	}
}

func TestNegotiateProtocolNoMismatchWhenEngineAdvertisesNone(t *testing.T) {
	u := &Upgrader{}
	proto, mismatch := u.negotiateProtocol("whatever")
	if mismatch || proto != "" {
		t.Fatalf("proto=%q mismatch=%v, want proto=\"\" mismatch=false", proto, mismatch)
	}
}

func TestUpgradeWritesUpgradeRequiredOnProtocolMismatch(t *testing.T) {
	server, client := cadentetest.PipeConn()
	defer client.Close()

	e := NewEngine()
	go e.ServeConn(server, Endpoint{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := e.GetContext(context.Background())
		if err != nil {
			t.Errorf("GetContext: %v", err)
			return
		}
		u := &Upgrader{Protocols: []string{"chat"}}
		if _, err := u.Upgrade(c); err != ErrUpgradeFailed {
			t.Errorf("Upgrade err = %v, want ErrUpgradeFailed", err)
		}
	}()

	cc := cadentetest.NewClient(client)
	cc.SetDeadline(time.Now().Add(5 * time.Second))
	if err := cc.SendRequestLine(MethodGet, "/ws", "HTTP/1.1",
		"Host: example.com",
		"Upgrade: websocket",
		"Connection: Upgrade",
		"Sec-WebSocket-Version: 13",
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==",
		"Sec-WebSocket-Protocol: bogus"); err != nil {
		t.Fatalf("SendRequestLine: %v", err)
	}

	status, err := cc.ReadStatusLine()
	if err != nil {
		t.Fatalf("ReadStatusLine: %v", err)
	}
	if status != "HTTP/1.1 426 Upgrade Required" {
		t.Fatalf("status = %q, want 426 Upgrade Required", status)
	}
	<-done
}
