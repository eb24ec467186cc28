package engine

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"

	"github.com/go-logr/logr"
)

var (
	ErrReleased    = errors.New("engine: connection released")
	ErrNotAttached = errors.New("engine: no transport attached")
	ErrNotReset    = errors.New("engine: connection not reset for a client handshake")
)

// Std is an Engine backed by crypto/tls.
type Std struct {
	Log logr.Logger
}

func NewStd(log logr.Logger) *Std {
	return &Std{Log: log}
}

func (e *Std) NewConn(settings Settings) (Conn, error) {
	if settings.MinVersion != 0 && settings.MaxVersion != 0 && settings.MinVersion > settings.MaxVersion {
		return nil, fmt.Errorf("%w: min version %s above max version %s", ErrInvalidSettings, tls.VersionName(settings.MinVersion), tls.VersionName(settings.MaxVersion))
	}

	c := &stdConn{
		log:      e.Log,
		settings: settings,
		cfg: &tls.Config{
			NextProtos: settings.ALPN,
			MinVersion: settings.MinVersion,
			MaxVersion: settings.MaxVersion,
		},
	}

	/* x509 config */
	if len(settings.Roots) > 0 {
		c.roots = x509.NewCertPool()
		for _, ca := range settings.Roots {
			c.roots.AddCert(ca)
		}
	}

	return c, nil
}

type stdConn struct {
	log      logr.Logger
	settings Settings
	roots    *x509.CertPool // nil means system roots

	cfg      *tls.Config
	reset    bool
	released bool
	tc       *tls.Conn
}

func (c *stdConn) InstallDefaultVerifier() error {
	if c.released {
		return ErrReleased
	}

	// Built-in verification would check the name iff ServerName is set, and refuses to run without one.
	// We need verify-cert and verify-name to be independent, so we skip the built-in and recreate the default checks ourselves.
	c.cfg.InsecureSkipVerify = true
	c.cfg.VerifyConnection = func(cs tls.ConnectionState) error {
		c.log.V(1).Info("TLS: verifying serving cert chain", "serverName", cs.ServerName, "verifyCert", c.settings.VerifyCert, "verifyName", c.settings.VerifyName)

		if !c.settings.VerifyCert && !c.settings.VerifyName {
			return nil
		}
		if len(cs.PeerCertificates) == 0 {
			return errors.New("engine: server presented no certificates")
		}
		if !c.settings.VerifyCert {
			return cs.PeerCertificates[0].VerifyHostname(cs.ServerName)
		}

		opts := x509.VerifyOptions{
			Roots:         c.roots,
			Intermediates: x509.NewCertPool(),
		}
		if c.settings.VerifyName {
			opts.DNSName = cs.ServerName
		}
		for _, cert := range cs.PeerCertificates[1:] {
			opts.Intermediates.AddCert(cert)
		}

		_, err := cs.PeerCertificates[0].Verify(opts)
		return err
	}

	return nil
}

func (c *stdConn) SetSingleRSA(chain [][]byte, key *rsa.PrivateKey) error {
	if c.released {
		return ErrReleased
	}

	c.cfg.Certificates = []tls.Certificate{{
		Certificate: chain,
		PrivateKey:  key,
		SupportedSignatureAlgorithms: []tls.SignatureScheme{
			tls.PKCS1WithSHA256,
			tls.PKCS1WithSHA384,
			tls.PKCS1WithSHA512,
			tls.PKCS1WithSHA1,
		},
	}}
	// TLS 1.3 forbids PKCS#1 v1.5 for handshake signatures
	if c.cfg.MaxVersion == 0 || c.cfg.MaxVersion > tls.VersionTLS12 {
		c.cfg.MaxVersion = tls.VersionTLS12
	}
	if c.cfg.MinVersion > c.cfg.MaxVersion {
		return fmt.Errorf("%w: RSA PKCS#1 v1.5 credential needs TLS 1.2 or below, but min version is %s", ErrInvalidSettings, tls.VersionName(c.cfg.MinVersion))
	}

	return nil
}

func (c *stdConn) SetSingleEC(chain [][]byte, key *ecdsa.PrivateKey) error {
	if c.released {
		return ErrReleased
	}

	var scheme tls.SignatureScheme
	switch key.Curve.Params().BitSize {
	case 256:
		scheme = tls.ECDSAWithP256AndSHA256
	case 384:
		scheme = tls.ECDSAWithP384AndSHA384
	case 521:
		scheme = tls.ECDSAWithP521AndSHA512
	default:
		return fmt.Errorf("%w: unsupported EC curve %s", ErrInvalidSettings, key.Curve.Params().Name)
	}

	c.cfg.Certificates = []tls.Certificate{{
		Certificate:                  chain,
		PrivateKey:                   key,
		SupportedSignatureAlgorithms: []tls.SignatureScheme{scheme, tls.ECDSAWithSHA1},
	}}

	return nil
}

func (c *stdConn) Reset(serverName *string) error {
	if c.released {
		return ErrReleased
	}

	c.cfg.ServerName = "" // SNI is optional
	if serverName != nil {
		c.cfg.ServerName = *serverName
	}
	c.reset = true

	return nil
}

func (c *stdConn) Attach(transport net.Conn) error {
	if c.released {
		return ErrReleased
	}
	if !c.reset {
		return ErrNotReset
	}

	c.tc = tls.Client(transport, c.cfg)

	return nil
}

func (c *stdConn) Release() {
	c.released = true
	c.cfg = nil
	c.tc = nil
}

func (c *stdConn) Handshake(ctx context.Context) error {
	if c.released {
		return ErrReleased
	}
	if c.tc == nil {
		return ErrNotAttached
	}
	return c.tc.HandshakeContext(ctx)
}

func (c *stdConn) Read(p []byte) (int, error) {
	if c.tc == nil {
		return 0, ErrNotAttached
	}
	return c.tc.Read(p)
}

func (c *stdConn) Write(p []byte) (int, error) {
	if c.tc == nil {
		return 0, ErrNotAttached
	}
	return c.tc.Write(p)
}

// Close sends close_notify and closes the attached transport, then releases the conn.
func (c *stdConn) Close() error {
	if c.released {
		return nil
	}

	var err error
	if c.tc != nil {
		err = c.tc.Close()
	}
	c.Release()

	return err
}

func (c *stdConn) ConnectionState() tls.ConnectionState {
	if c.tc == nil {
		return tls.ConnectionState{}
	}
	return c.tc.ConnectionState()
}
