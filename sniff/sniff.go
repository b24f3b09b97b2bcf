/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package sniff implements the subset of the WHATWG MIME Sniffing
// algorithm that net/http's DetectContentType exposes, used by
// BodyWriter to fill in a Content-Type when application code writes a
// Response without setting one (spec.md DOMAIN STACK: "a sniffing
// package adapted from the teacher's sniff/, kept minimal").
//
// Only the two signature kinds the teacher's retrieved files define
// (exactSig, textSig) are implemented; maskedSig (used by upstream
// net/http for HTML/XML/RSS prefix matching with whitespace and case
// insensitivity) is added here in the same idiom to round out common
// cases, grounded on the same RFC algorithm the teacher cites.
package sniff

type sig interface {
	// match returns the matched content-type, or "" if data does not
	// match this signature. firstNonWS is the index of the first
	// non-whitespace byte of data; data itself is passed unskipped.
	match(data []byte, firstNonWS int) string
}

type exactSig struct {
	sig []byte
	ct  string
}

type maskedSig struct {
	mask, pat []byte
	skipWS    bool
	ct        string
}

func (m *maskedSig) match(data []byte, firstNonWS int) string {
	if m.skipWS {
		data = data[firstNonWS:]
	}
	if len(data) < len(m.mask) {
		return ""
	}
	for i, mask := range m.mask {
		db := data[i] & mask
		if db != m.pat[i] {
			return ""
		}
	}
	return m.ct
}

type textSig struct{}

var sniffSignatures = []sig{
	&exactSig{sig: []byte("%PDF-"), ct: "application/pdf"},
	&exactSig{sig: []byte("%!PS-Adobe-"), ct: "application/postscript"},
	&exactSig{sig: []byte("\x1F\x8B\x08"), ct: "application/x-gzip"},
	&exactSig{sig: []byte("PK\x03\x04"), ct: "application/zip"},
	&exactSig{sig: []byte("\x89PNG\r\n\x1a\n"), ct: "image/png"},
	&exactSig{sig: []byte("\xFF\xD8\xFF"), ct: "image/jpeg"},
	&exactSig{sig: []byte("GIF87a"), ct: "image/gif"},
	&exactSig{sig: []byte("GIF89a"), ct: "image/gif"},
	&maskedSig{
		mask: []byte("\xFF\xFF\xFF\xFF\xFF"),
		pat:  []byte("<html"),
		skipWS: true,
		ct:   "text/html; charset=utf-8",
	},
	&maskedSig{
		mask:   []byte("\xFF\xFF\xFF\xFF\xFF"),
		pat:    []byte("<?xml"),
		skipWS: true,
		ct:     "text/xml; charset=utf-8",
	},
	textSig{},
}

const sniffLen = 512

// DetectContentType implements the algorithm described at
// https://mimesniff.spec.whatwg.org/ to determine the Content-Type of the
// given data. It considers at most the first 512 bytes of data. It
// always returns a valid MIME type: if it cannot determine a more
// specific one, it returns "application/octet-stream".
func DetectContentType(data []byte) string {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	firstNonWS := 0
	for ; firstNonWS < len(data) && isWS(data[firstNonWS]); firstNonWS++ {
	}
	for _, s := range sniffSignatures {
		if ct := s.match(data, firstNonWS); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}

func isWS(b byte) bool {
	switch b {
	case '\t', '\n', '\x0c', '\r', ' ':
		return true
	}
	return false
}
