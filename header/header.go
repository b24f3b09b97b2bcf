/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package header implements the ordered, case-insensitive, multi-valued
// header container used for both Request and Response headers (spec.md §3).
//
// Unlike net/http's Header (a plain map[string][]string, unordered), this
// type preserves insertion order across distinct keys and duplicate entries
// of the same key, because the wire format and at least one tested property
// (spec.md §8) require that Set-Cookie/Via-style duplicates come back out in
// the order they went in.
package header

import "strings"

// Field is one header-field as it appeared (or will appear) on the wire.
type Field struct {
	Key   string // canonical form, see CanonicalKey
	Value string
}

// Header is an ordered, case-insensitive multi-map of header fields.
//
// The zero value is ready to use. Header is not safe for concurrent
// mutation; callers needing that guarantee (e.g. a Response whose headers
// are read by the application while the body is being written) must
// synchronize externally.
type Header struct {
	fields []Field
}

// New returns an empty Header with room for n fields preallocated.
func New(n int) Header {
	if n <= 0 {
		return Header{}
	}
	return Header{fields: make([]Field, 0, n)}
}

// Add appends the key, value pair to the header. It does not remove any
// existing values associated with key.
func (h *Header) Add(key, value string) {
	h.fields = append(h.fields, Field{Key: CanonicalKey(key), Value: value})
}

// Set removes all existing entries associated with key and appends one new
// entry in their place, at the position of the first removed entry (or at
// the end, if key was absent).
func (h *Header) Set(key, value string) {
	key = CanonicalKey(key)
	for i := range h.fields {
		if h.fields[i].Key == key {
			h.fields[i].Value = value
			h.removeFrom(i+1, key)
			return
		}
	}
	h.fields = append(h.fields, Field{Key: key, Value: value})
}

// removeFrom deletes every remaining field with the given key starting at
// index i, preserving the order of everything else.
func (h *Header) removeFrom(i int, key string) {
	out := h.fields[:i]
	for ; i < len(h.fields); i++ {
		if h.fields[i].Key != key {
			out = append(out, h.fields[i])
		}
	}
	h.fields = out
}

// Get returns the first value associated with key, or "" if absent. Lookup
// is case-insensitive.
func (h Header) Get(key string) string {
	key = CanonicalKey(key)
	for i := range h.fields {
		if h.fields[i].Key == key {
			return h.fields[i].Value
		}
	}
	return ""
}

// Values returns every value associated with key, in insertion order. The
// returned slice is a copy and safe to mutate.
func (h Header) Values(key string) []string {
	key = CanonicalKey(key)
	var out []string
	for i := range h.fields {
		if h.fields[i].Key == key {
			out = append(out, h.fields[i].Value)
		}
	}
	return out
}

// Has reports whether key has at least one value.
func (h Header) Has(key string) bool {
	key = CanonicalKey(key)
	for i := range h.fields {
		if h.fields[i].Key == key {
			return true
		}
	}
	return false
}

// Del removes every entry associated with key.
func (h *Header) Del(key string) {
	key = CanonicalKey(key)
	h.removeFrom(0, key)
}

// Len returns the number of header fields stored (duplicates count
// individually).
func (h Header) Len() int { return len(h.fields) }

// Each calls fn once per field, in insertion order, including duplicates.
func (h Header) Each(fn func(key, value string)) {
	for _, f := range h.fields {
		fn(f.Key, f.Value)
	}
}

// Clone returns a deep copy.
func (h Header) Clone() Header {
	if len(h.fields) == 0 {
		return Header{}
	}
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return Header{fields: out}
}

// hasToken reports whether v, interpreted as a comma-separated list, has
// token (case-insensitively) as one of its elements.
func hasToken(v, token string) bool {
	if len(v) == len(token) && strings.EqualFold(v, token) {
		return true
	}
	for _, part := range strings.Split(v, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// HasToken reports whether the header named key has token as one of its
// comma-separated values (case-insensitive), matching how Connection and
// Transfer-Encoding list values are compared (spec.md §4.3, §4.4).
func (h Header) HasToken(key, token string) bool {
	for _, v := range h.Values(key) {
		if hasToken(v, token) {
			return true
		}
	}
	return false
}
