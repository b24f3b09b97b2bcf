/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package cadente

import (
	"crypto/tls"
	"crypto/x509"
)

// Scheme names the transport an Endpoint listens with (spec.md §3).
type Scheme int

const (
	SchemePlain Scheme = iota
	SchemeTLS
)

func (s Scheme) String() string {
	if s == SchemeTLS {
		return "tls"
	}
	return "plain"
}

// TLSOptions configures the TLS half of an Endpoint (spec.md §6.2). It is a
// thin, engine-owned projection of crypto/tls.Config: no certificate
// issuance or rotation happens here, only what the engine needs to terminate
// TLS on an accepted socket.
type TLSOptions struct {
	// Certificate is the server certificate chain + key pair to present.
	Certificate tls.Certificate

	// AllowedProtocols restricts ALPN negotiation (e.g. "http/1.1"). Empty
	// means no ALPN preference is advertised.
	AllowedProtocols []string

	// RequireClientCertificate enables mutual TLS.
	RequireClientCertificate bool

	// CheckRevocation, if set, is consulted for every presented client
	// certificate during the handshake's VerifyPeerCertificate callback.
	// A nil function means no revocation checking is performed.
	CheckRevocation func(cert *tls.Certificate) error
}

func (o *TLSOptions) config() *tls.Config {
	cfg := &tls.Config{
		Certificates: []tls.Certificate{o.Certificate},
		NextProtos:   o.AllowedProtocols,
		MinVersion:   tls.VersionTLS12,
	}
	if o.RequireClientCertificate {
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	if o.CheckRevocation != nil {
		check := o.CheckRevocation
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			for _, raw := range rawCerts {
				cert, err := x509.ParseCertificate(raw)
				if err != nil {
					return err
				}
				if err := check(&tls.Certificate{Certificate: [][]byte{raw}, Leaf: cert}); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return cfg
}

// Endpoint describes one address the engine should listen on (spec.md §3).
// Immutable once passed to Engine.Start.
type Endpoint struct {
	// Address is a literal IP or a DNS name, resolved at Start (spec.md
	// §4.1). Empty means "all interfaces".
	Address string

	// Port is the TCP port to bind.
	Port int

	// Scheme selects plain TCP or TLS.
	Scheme Scheme

	// TLS is required when Scheme == SchemeTLS.
	TLS *TLSOptions
}
