//go:build unix

package client

import (
	"errors"
	"io"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// fdConn does blocking read(2)/write(2) on raw descriptors.
// No os.File, because its finalizer would close descriptors we don't own.
type fdConn struct {
	fds    DescriptorPair
	closed bool
}

func newFDConn(fds DescriptorPair) (net.Conn, error) {
	return &fdConn{fds: fds}, nil
}

func (c *fdConn) Read(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(c.fds.Read, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (c *fdConn) Write(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}
	written := 0
	for written < len(p) {
		n, err := unix.Write(c.fds.Write, p[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// Close only stops further I/O through this conn; the descriptors belong to someone else.
func (c *fdConn) Close() error {
	c.closed = true
	return nil
}

func (c *fdConn) LocalAddr() net.Addr {
	sa, err := unix.Getsockname(c.fds.Write)
	if err != nil {
		return transportAddr(c.fds.String())
	}
	return sockaddrToAddr(sa, c.fds)
}

func (c *fdConn) RemoteAddr() net.Addr {
	sa, err := unix.Getpeername(c.fds.Write)
	if err != nil {
		return transportAddr(c.fds.String())
	}
	return sockaddrToAddr(sa, c.fds)
}

func (c *fdConn) SetDeadline(t time.Time) error { return os.ErrNoDeadline }
func (c *fdConn) SetReadDeadline(t time.Time) error { return os.ErrNoDeadline }
func (c *fdConn) SetWriteDeadline(t time.Time) error { return os.ErrNoDeadline }

func sockaddrToAddr(sa unix.Sockaddr, fds DescriptorPair) net.Addr {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(v.Addr[:]), Port: v.Port}
	case *unix.SockaddrUnix:
		return &net.UnixAddr{Name: v.Name, Net: "unix"}
	}
	return transportAddr(fds.String())
}
