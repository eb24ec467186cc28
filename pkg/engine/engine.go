// Package engine is the boundary between connection bootstrap and whatever actually speaks TLS.
//
// The bootstrap code only allocates a Conn, configures it, and resets it for a client handshake.
// Record layer, handshake, cipher negotiation and certificate validation all live behind these interfaces.
package engine

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
)

// ErrInvalidSettings is wrapped by any error an engine returns because it was asked for something contradictory,
// rather than because it ran out of something or broke.
var ErrInvalidSettings = errors.New("invalid engine settings")

// Settings is what an engine needs to know at allocation time.
type Settings struct {
	VerifyCert bool
	VerifyName bool
	Roots      []*x509.Certificate // nil means system roots

	ALPN       []string
	MinVersion uint16
	MaxVersion uint16
}

type Engine interface {
	NewConn(settings Settings) (Conn, error)
}

// Conn is an engine-owned client connection object.
//
// Call order during bootstrap is NewConn, InstallDefaultVerifier, at most one of SetSingleRSA/SetSingleEC, Reset, Attach.
// If bootstrap fails after NewConn, Release is called and the Conn is never used again.
type Conn interface {
	InstallDefaultVerifier() error
	// PKCS#1 v1.5 signing
	SetSingleRSA(chain [][]byte, key *rsa.PrivateKey) error
	// ASN.1 (DER) ECDSA signing
	SetSingleEC(chain [][]byte, key *ecdsa.PrivateKey) error
	// Prepare a client handshake. nil serverName means no SNI extension.
	Reset(serverName *string) error
	Attach(transport net.Conn) error
	Release()

	Handshake(ctx context.Context) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	ConnectionState() tls.ConnectionState
}
