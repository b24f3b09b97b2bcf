/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package header

import (
	"strings"
	"testing"
)

func TestHeaderPreservesInsertionOrderAndDuplicates(t *testing.T) {
	h := New(0)
	h.Add("Set-Cookie", "a=1")
	h.Add("X-Trace", "t1")
	h.Add("Set-Cookie", "b=2")

	var got []string
	h.Each(func(k, v string) { got = append(got, k+"="+v) })

	want := []string{"Set-Cookie=a=1", "X-Trace=t1", "Set-Cookie=b=2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if vals := h.Values("set-cookie"); len(vals) != 2 || vals[0] != "a=1" || vals[1] != "b=2" {
		t.Fatalf("Values(set-cookie) = %v", vals)
	}
}

func TestHeaderSetReplacesAllPriorValues(t *testing.T) {
	h := New(0)
	h.Add("X-A", "1")
	h.Add("X-A", "2")
	h.Set("x-a", "3")
	if vals := h.Values("X-A"); len(vals) != 1 || vals[0] != "3" {
		t.Fatalf("Values after Set = %v", vals)
	}
}

func TestCanonicalKey(t *testing.T) {
	cases := map[string]string{
		"content-type":    "Content-Type",
		"CONTENT-LENGTH":  "Content-Length",
		"x-request-id":    "X-Request-Id",
		"already-Correct": "Already-Correct",
	}
	for in, want := range cases {
		if got := CanonicalKey(in); got != want {
			t.Errorf("CanonicalKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasToken(t *testing.T) {
	h := New(0)
	h.Add("Connection", "keep-alive, Upgrade")
	if !h.HasToken("Connection", "upgrade") {
		t.Fatal("expected case-insensitive token match")
	}
	if h.HasToken("Connection", "close") {
		t.Fatal("unexpected token match")
	}
}

func TestWriteOrderAndExclusion(t *testing.T) {
	h := New(0)
	h.Add("B", "2")
	h.Add("A", "1")
	h.Add("C", "3")
	var buf strings.Builder
	if err := h.Write(&buf, map[string]bool{"A": true}); err != nil {
		t.Fatal(err)
	}
	want := "B: 2\r\nC: 3\r\n"
	if buf.String() != want {
		t.Fatalf("Write() = %q, want %q", buf.String(), want)
	}
}
