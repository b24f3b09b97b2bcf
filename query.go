/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import "strings"

// splitRequestTarget separates a request-target into its path and raw query
// components.
//
// The teacher's QueryString parser reconstructed a net/url.URL by prefixing
// "http://localhost" onto the raw path before parsing it — a workaround for
// a limitation of that URL type, not a necessity of the grammar. spec.md §9
// flags this as a bug to fix rather than carry forward: Cadente parses the
// query string directly off the raw request-target instead.
func splitRequestTarget(target string) (path, rawQuery string) {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return target, ""
}

// ParseQuery decodes a raw query string (without the leading '?') into a
// multi-map of values. The values of a repeated key keep their arrival
// order; the order of distinct keys is not kept (unlike header.Header).
func ParseQuery(rawQuery string) (map[string][]string, error) {
	values := make(map[string][]string)
	for rawQuery != "" {
		var pair string
		if i := strings.IndexByte(rawQuery, '&'); i >= 0 {
			pair, rawQuery = rawQuery[:i], rawQuery[i+1:]
		} else {
			pair, rawQuery = rawQuery, ""
		}
		if pair == "" {
			continue
		}
		key, value := pair, ""
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key, value = pair[:i], pair[i+1:]
		}
		key, err := queryUnescape(key)
		if err != nil {
			return nil, err
		}
		value, err = queryUnescape(value)
		if err != nil {
			return nil, err
		}
		values[key] = append(values[key], value)
	}
	return values, nil
}

func queryUnescape(s string) (string, error) {
	s = strings.ReplaceAll(s, "+", " ")
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	var buf []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			if i+2 >= len(s) {
				return "", badRequestError("malformed percent-encoding in query string")
			}
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if !ok1 || !ok2 {
				return "", badRequestError("malformed percent-encoding in query string")
			}
			if buf == nil {
				buf = []byte(s[:i])
			}
			buf = append(buf, hi<<4|lo)
			i += 2
			continue
		}
		if buf != nil {
			buf = append(buf, s[i])
		}
	}
	if buf == nil {
		return s, nil
	}
	return string(buf), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
