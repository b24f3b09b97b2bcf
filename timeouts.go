/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

// writeTimeoutResponse is the best-effort answer sent when a Context's
// Respond was never called within ResponseTimeout: a 503 Service
// Unavailable with Content-Length: 0 and Connection: close, with no body
// (the teacher's timeoutHandler sent a fixed "Timeout" body instead).
func (c *Connection) writeTimeoutResponse() {
	c.writeStatusOnly(StatusServiceUnavailable)
}
