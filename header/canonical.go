/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package header

const toLower = 'a' - 'A'

// Well-known header names, in canonical form.
const (
	Accept               = "Accept"
	AcceptEncoding       = "Accept-Encoding"
	CacheControl         = "Cache-Control"
	Connection           = "Connection"
	ContentEncoding      = "Content-Encoding"
	ContentLength        = "Content-Length"
	ContentType          = "Content-Type"
	Date                 = "Date"
	Expect               = "Expect"
	Host                 = "Host"
	SecWebSocketAccept   = "Sec-Websocket-Accept"
	SecWebSocketKey      = "Sec-Websocket-Key"
	SecWebSocketProtocol = "Sec-Websocket-Protocol"
	SecWebSocketVersion  = "Sec-Websocket-Version"
	Server               = "Server"
	SetCookie            = "Set-Cookie"
	Trailer              = "Trailer"
	TransferEncoding     = "Transfer-Encoding"
	Upgrade              = "Upgrade"
)

// isTokenTable is a copy of net/http/httpguts' tchar table: the set of bytes
// allowed in an RFC 7230 token (header field name).
var isTokenTable = [127]bool{
	'0': true, '1': true, '2': true, '3': true, '4': true, '5': true, '6': true, '7': true,
	'8': true, '9': true,

	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true, 'h': true,
	'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true, 'o': true, 'p': true,
	'q': true, 'r': true, 's': true, 't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,

	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true, 'H': true,
	'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true, 'O': true, 'P': true,
	'Q': true, 'R': true, 'S': true, 'T': true, 'U': true, 'V': true, 'W': true, 'X': true,
	'Y': true, 'Z': true,

	'!': true, '#': true, '$': true, '%': true, '&': true, '\'': true, '*': true, '+': true,
	'-': true, '.': true, '^': true, '_': true, '`': true, '|': true, '~': true,
}

func validFieldByte(b byte) bool {
	return int(b) < len(isTokenTable) && isTokenTable[b]
}

// IsValidName reports whether v is a syntactically valid RFC 7230 header
// field name (spec.md §4.3: "Header names are matched case-insensitively
// everywhere").
func IsValidName(v string) bool {
	if len(v) == 0 {
		return false
	}
	for i := 0; i < len(v); i++ {
		if !validFieldByte(v[i]) {
			return false
		}
	}
	return true
}

func isCTL(b byte) bool { return b < ' ' || b == 0x7f }
func isLWS(b byte) bool { return b == ' ' || b == '\t' }

// IsValidValue reports whether v is free of forbidden control characters
// (anything but horizontal whitespace).
func IsValidValue(v string) bool {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if isCTL(b) && !isLWS(b) {
			return false
		}
	}
	return true
}

// CanonicalKey returns the canonical form of a header field name: the first
// letter and any letter following a hyphen are upper-cased, the rest are
// lower-cased. Names containing bytes outside the RFC 7230 token set are
// returned unchanged, exactly as net/http's CanonicalHeaderKey behaves.
func CanonicalKey(s string) string {
	upper := true
	needsChange := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !validFieldByte(c) {
			return s
		}
		if upper && 'a' <= c && c <= 'z' {
			needsChange = true
		}
		if !upper && 'A' <= c && c <= 'Z' {
			needsChange = true
		}
		upper = c == '-'
	}
	if !needsChange {
		return s
	}
	buf := []byte(s)
	upper = true
	for i, c := range buf {
		if upper && 'a' <= c && c <= 'z' {
			c -= toLower
		} else if !upper && 'A' <= c && c <= 'Z' {
			c += toLower
		}
		buf[i] = c
		upper = c == '-'
	}
	return string(buf)
}
