/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package header

import "time"

// TimeFormat is the format used for the Date header. It is like
// time.RFC1123 but hard-codes GMT as the zone; the time being formatted must
// already be in UTC.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

var timeFormats = []string{TimeFormat, time.RFC850, time.ANSIC}

// ParseTime parses a time header value, trying each of the three formats
// HTTP/1.1 allows.
func ParseTime(text string) (time.Time, error) {
	var t time.Time
	var err error
	for _, layout := range timeFormats {
		t, err = time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
	}
	return t, err
}

// AppendTime appends t, formatted per TimeFormat, to buf.
func AppendTime(buf []byte, t time.Time) []byte {
	return t.AppendFormat(buf, TimeFormat)
}
