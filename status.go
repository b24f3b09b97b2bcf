/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

// Status codes used directly by the engine itself (spec.md §7). Application
// code is free to write any status code; these are the ones the engine
// composes on error paths or protocol events.
const (
	StatusContinue                    = 100
	StatusSwitchingProtocols          = 101
	StatusOK                          = 200
	StatusNoContent                   = 204
	StatusBadRequest                  = 400
	StatusExpectationFailed           = 417
	StatusRequestURITooLong           = 414
	StatusRequestHeaderFieldsTooLarge = 431
	StatusUpgradeRequired             = 426
	StatusInternalServerError         = 500
	StatusServiceUnavailable          = 503
)

var statusText = map[int]string{
	StatusContinue:                    "Continue",
	StatusSwitchingProtocols:          "Switching Protocols",
	StatusOK:                          "OK",
	StatusNoContent:                   "No Content",
	StatusBadRequest:                  "Bad Request",
	StatusExpectationFailed:           "Expectation Failed",
	StatusRequestURITooLong:           "Request-URI Too Long",
	StatusRequestHeaderFieldsTooLarge: "Request Header Fields Too Large",
	StatusUpgradeRequired:             "Upgrade Required",
	StatusInternalServerError:         "Internal Server Error",
	StatusServiceUnavailable:          "Service Unavailable",
}

// StatusText returns a reason phrase for code, or "status code N" if the
// engine has no builtin text for it (application code is expected to
// usually set its own StatusText on the Response).
func StatusText(code int) string {
	if t, ok := statusText[code]; ok {
		return t
	}
	return "status code " + itoa(int64(code))
}

// bodyAllowedForStatus reports whether a response with this status code is
// permitted to carry a body, per RFC 7230 §3.3.
func bodyAllowedForStatus(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == StatusNoContent:
		return false
	case status == 304:
		return false
	}
	return true
}
