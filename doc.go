/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package cadente is an embeddable HTTP/1.1 server engine.
//
// It accepts TCP (and optionally TLS) connections on one or more Hosts,
// parses HTTP/1.1 request messages, and hands each request/response pair to
// application code as a Context. Unlike net/http, dispatch is pull-based:
// application code calls Engine.GetContext to retrieve the next Context
// instead of registering a Handler that the engine calls back into (a
// Handler may still be installed for callers that prefer that style — it is
// implemented on top of the same queue).
//
// Routing, content negotiation, body-format parsing (form/multipart/JSON),
// session management, TLS certificate issuance and HTTP/2 are out of scope:
// those are the job of whatever framework embeds this engine.
package cadente
