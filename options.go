/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"runtime"
	"time"
)

// Options collects every tunable of an Engine. It has no file-based or
// env-based source of its own: an embedding application owns
// configuration however it likes (flags, viper, a struct literal) and
// turns it into Options, same as the teacher's Server exposes plain
// struct fields rather than reading its own config file (spec.md AMBIENT
// STACK: "config is functional-options, not file-based, since Cadente is
// a library, not a standalone process").
type Options struct {
	ReadTimeout         time.Duration
	ReadHeaderTimeout   time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	TLSHandshakeTimeout time.Duration

	// ResponseTimeout bounds how long the connection waits for
	// Context.Respond once a Context has been queued, after which it
	// sends a best-effort 503 and closes the connection.
	ResponseTimeout time.Duration

	MaxRequestLineBytes int
	MaxHeaderBytes      int

	// CloseOnServerError closes the connection after any response with a
	// 5xx status, on top of the other keep-alive vetoes (spec.md §4.2:
	// "response status is 5xx *and* configuration says so").
	CloseOnServerError bool

	// AcceptBareLF allows a line terminator of bare LF (no preceding CR)
	// in the request line and header section; off by default, which
	// rejects bare LF as a protocol error (spec.md §4.3, §6.2).
	AcceptBareLF bool

	// AllowTrailerMerge appends a chunked request's trailer fields onto
	// Request.Header after the response has been written and the request
	// body drained, on a connection that stays open (so they are visible
	// once Context.Respond returns, not at body EOF); off by default, in
	// which case trailers are still readable from Request.Trailer but never
	// touch Request.Header (spec.md §4.3, §6.2, §8).
	AllowTrailerMerge bool

	// QueueCapacity bounds the number of parsed-but-not-yet-answered
	// Contexts the engine will buffer across all connections before a
	// connection's producer blocks (spec.md §4.6). defaultOptions sets this
	// to 512 per core (spec.md §4.5: "a machine with P cores has ≈ 512·P
	// slots").
	QueueCapacity int

	Logger  Logger
	Metrics *Metrics
}

// Option mutates an Options being built by NewEngine.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		ReadTimeout:         90 * time.Second,
		ReadHeaderTimeout:   10 * time.Second,
		WriteTimeout:        90 * time.Second,
		IdleTimeout:         90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxRequestLineBytes: defaultMaxRequestLineBytes,
		MaxHeaderBytes:      defaultMaxHeaderBytes,
		QueueCapacity:       512 * runtime.NumCPU(),
		Logger:              newLogrusLogger(),
	}
}

func WithReadTimeout(d time.Duration) Option { return func(o *Options) { o.ReadTimeout = d } }

func WithReadHeaderTimeout(d time.Duration) Option {
	return func(o *Options) { o.ReadHeaderTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option { return func(o *Options) { o.IdleTimeout = d } }

func WithResponseTimeout(d time.Duration) Option {
	return func(o *Options) { o.ResponseTimeout = d }
}

func WithTLSHandshakeTimeout(d time.Duration) Option {
	return func(o *Options) { o.TLSHandshakeTimeout = d }
}

func WithMaxRequestLineBytes(n int) Option {
	return func(o *Options) { o.MaxRequestLineBytes = n }
}

func WithMaxHeaderBytes(n int) Option { return func(o *Options) { o.MaxHeaderBytes = n } }

func WithQueueCapacity(n int) Option { return func(o *Options) { o.QueueCapacity = n } }

func WithCloseOnServerError(b bool) Option { return func(o *Options) { o.CloseOnServerError = b } }

func WithAcceptBareLF(b bool) Option { return func(o *Options) { o.AcceptBareLF = b } }

func WithAllowTrailerMerge(b bool) Option { return func(o *Options) { o.AllowTrailerMerge = b } }

func WithLogger(l Logger) Option { return func(o *Options) { o.Logger = l } }

func WithMetrics(m *Metrics) Option { return func(o *Options) { o.Metrics = m } }
