/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package header

import (
	"io"
	"strings"
)

var newlineToSpace = strings.NewReplacer("\n", " ", "\r", " ")

// Write serializes h in wire format (insertion order, "Key: value\r\n" per
// field), skipping any key present in exclude.
func (h Header) Write(w io.Writer, exclude map[string]bool) error {
	ws, ok := w.(interface{ WriteString(string) (int, error) })
	if !ok {
		ws = stringWriter{w}
	}
	for _, f := range h.fields {
		if exclude[f.Key] {
			continue
		}
		v := newlineToSpace.Replace(f.Value)
		v = strings.TrimSpace(v)
		if _, err := ws.WriteString(f.Key); err != nil {
			return err
		}
		if _, err := ws.WriteString(": "); err != nil {
			return err
		}
		if _, err := ws.WriteString(v); err != nil {
			return err
		}
		if _, err := ws.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return nil
}

type stringWriter struct{ w io.Writer }

func (s stringWriter) WriteString(str string) (int, error) {
	return s.w.Write([]byte(str))
}
