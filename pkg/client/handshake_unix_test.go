//go:build unix

package client

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"strconv"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func socketpair(t *testing.T) (int, net.Conn) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)

	f := os.NewFile(uintptr(fds[1]), "server end")
	peer, err := net.FileConn(f) // dups
	require.NoError(t, err)
	require.NoError(t, f.Close())

	return fds[0], peer
}

func TestHandshakeOverCallerSocket(t *testing.T) {
	p := newPKI(t)
	fd, peer := socketpair(t)
	defer unix.Close(fd)

	results := make(chan serverResult, 1)
	go serveOne(peer, &tls.Config{Certificates: []tls.Certificate{p.server}}, results)

	s := New(testr.New(t), p.clientConfig())
	require.NoError(t, s.ConnectSocket(fd, ptr("server.test.")))
	require.Equal(t, DescriptorPair{Read: fd, Write: fd}, s.Transport())
	require.Equal(t, -1, s.Socket())

	require.NoError(t, s.Handshake(context.Background()))
	r := waitResult(t, results)
	require.NoError(t, r.err)
	require.Equal(t, "server.test", r.sni)

	readHello(t, s)
	require.NoError(t, s.Close())

	// Still the caller's
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	require.NoError(t, err)
}

func TestHandshakeOverSplitDescriptors(t *testing.T) {
	p := newPKI(t)
	fd, peer := socketpair(t)
	defer unix.Close(fd)

	// Same socket, but reached through two different descriptors
	wfd, err := unix.Dup(fd)
	require.NoError(t, err)
	defer unix.Close(wfd)

	results := make(chan serverResult, 1)
	go serveOne(peer, &tls.Config{Certificates: []tls.Certificate{p.server}}, results)

	s := New(testr.New(t), p.clientConfig())
	require.NoError(t, s.ConnectFDs(fd, wfd, ptr("server.test")))
	require.Equal(t, "fds r"+strconv.Itoa(fd)+"/w"+strconv.Itoa(wfd), s.Transport().String())

	require.NoError(t, s.Handshake(context.Background()))
	require.NoError(t, waitResult(t, results).err)
	readHello(t, s)
	require.NoError(t, s.Close())
}
