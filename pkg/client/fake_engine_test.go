package client

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/tls"
	"net"

	"github.com/mt-inside/tls-connect/pkg/engine"
)

// fakeEngine records how bootstrap drives the engine, without speaking any TLS.
type fakeEngine struct {
	newErr   error
	resetErr error
	conns    []*fakeConn
	settings []engine.Settings
}

func (e *fakeEngine) NewConn(settings engine.Settings) (engine.Conn, error) {
	e.settings = append(e.settings, settings)
	if e.newErr != nil {
		return nil, e.newErr
	}
	c := &fakeConn{resetErr: e.resetErr}
	e.conns = append(e.conns, c)
	return c, nil
}

func (e *fakeEngine) last() *fakeConn {
	if len(e.conns) == 0 {
		return nil
	}
	return e.conns[len(e.conns)-1]
}

type fakeConn struct {
	calls      []string
	serverName *string
	chain      [][]byte
	attached   net.Conn
	released   bool
	closed     bool
	resetErr   error
}

func (c *fakeConn) InstallDefaultVerifier() error {
	c.calls = append(c.calls, "verifier")
	return nil
}

func (c *fakeConn) SetSingleRSA(chain [][]byte, key *rsa.PrivateKey) error {
	c.calls = append(c.calls, "rsa")
	c.chain = chain
	return nil
}

func (c *fakeConn) SetSingleEC(chain [][]byte, key *ecdsa.PrivateKey) error {
	c.calls = append(c.calls, "ec")
	c.chain = chain
	return nil
}

func (c *fakeConn) Reset(serverName *string) error {
	c.calls = append(c.calls, "reset")
	if c.resetErr != nil {
		return c.resetErr
	}
	c.serverName = serverName
	return nil
}

func (c *fakeConn) Attach(transport net.Conn) error {
	c.calls = append(c.calls, "attach")
	c.attached = transport
	return nil
}

func (c *fakeConn) Release() {
	c.calls = append(c.calls, "release")
	c.released = true
}

func (c *fakeConn) Handshake(ctx context.Context) error { return nil }
func (c *fakeConn) Read(p []byte) (int, error) { return c.attached.Read(p) }
func (c *fakeConn) Write(p []byte) (int, error) { return c.attached.Write(p) }

func (c *fakeConn) Close() error {
	c.closed = true
	return c.attached.Close()
}

func (c *fakeConn) ConnectionState() tls.ConnectionState { return tls.ConnectionState{} }
