package client

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Transport is how the engine's records reach the peer.
// It's exactly one of DescriptorPair or CallbackPair, and is fixed once bound.
type Transport interface {
	fmt.Stringer
	isTransport()
}

// DescriptorPair is a readable and a writable descriptor; they may be the same one.
// They're read and written directly, and never closed by the transport.
type DescriptorPair struct {
	Read  int
	Write int
}

func (DescriptorPair) isTransport() {}

func (t DescriptorPair) String() string {
	if t.Read == t.Write {
		return fmt.Sprintf("fd %d", t.Read)
	}
	return fmt.Sprintf("fds r%d/w%d", t.Read, t.Write)
}

func (t DescriptorPair) valid() bool {
	return t.Read >= 0 && t.Write >= 0
}

// ReadFunc and WriteFunc follow io.Reader/io.Writer semantics; arg is the CallbackPair's Arg, passed through untouched.
type ReadFunc func(arg any, p []byte) (int, error)
type WriteFunc func(arg any, p []byte) (int, error)

type CallbackPair struct {
	Read  ReadFunc
	Write WriteFunc
	Arg   any
}

func (CallbackPair) isTransport() {}

func (CallbackPair) String() string {
	return "callbacks"
}

func (t CallbackPair) valid() bool {
	return t.Read != nil && t.Write != nil
}

// transportConn adapts a Transport to the net.Conn the engine wants.
func transportConn(t Transport) (net.Conn, error) {
	switch v := t.(type) {
	case DescriptorPair:
		return newFDConn(v)
	case CallbackPair:
		return &cbConn{cbs: v}, nil
	}
	panic(fmt.Sprintf("unknown transport type %T", t))
}

type transportAddr string

func (a transportAddr) Network() string { return "tls-connect" }
func (a transportAddr) String() string { return string(a) }

type cbConn struct {
	cbs CallbackPair
}

func (c *cbConn) Read(p []byte) (int, error) {
	return c.cbs.Read(c.cbs.Arg, p)
}

func (c *cbConn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := c.cbs.Write(c.cbs.Arg, p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, fmt.Errorf("write callback made no progress")
		}
	}
	return written, nil
}

// Close doesn't; the callbacks' owner tears them down.
func (c *cbConn) Close() error { return nil }

func (c *cbConn) LocalAddr() net.Addr { return transportAddr("callbacks") }
func (c *cbConn) RemoteAddr() net.Addr { return transportAddr("callbacks") }
func (c *cbConn) SetDeadline(t time.Time) error { return os.ErrNoDeadline }
func (c *cbConn) SetReadDeadline(t time.Time) error { return os.ErrNoDeadline }
func (c *cbConn) SetWriteDeadline(t time.Time) error { return os.ErrNoDeadline }
