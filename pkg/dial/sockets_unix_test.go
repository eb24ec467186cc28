//go:build unix

package dial

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func closedPort(t *testing.T) uint16 {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := uint16(l.Addr().(*net.TCPAddr).Port)
	require.NoError(t, l.Close())
	return port
}

func TestSystemSocketsConnect(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	live := netip.MustParseAddrPort(l.Addr().String())
	dead := netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), closedPort(t))

	c := NewConnector(testr.New(t))
	fd, err := c.Connect([]Candidate{
		streamCandidate(dead.Addr(), dead.Port()),
		streamCandidate(live.Addr(), live.Port()),
	})
	require.NoError(t, err)
	defer func() { _ = c.Sockets.Close(fd) }()

	peer := <-accepted
	defer peer.Close()

	_, err = unix.Write(fd, []byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = peer.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf))
}

func TestSystemSocketsAllRefused(t *testing.T) {
	c := NewConnector(testr.New(t))

	fd, err := c.Connect([]Candidate{
		streamCandidate(netip.MustParseAddr("127.0.0.1"), closedPort(t)),
	})
	require.Equal(t, -1, fd)
	require.ErrorIs(t, err, unix.ECONNREFUSED)
}

func TestSetIOTimeout(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	require.NoError(t, SetIOTimeout(fds[0], 50*time.Millisecond))

	start := time.Now()
	_, err = unix.Read(fds[0], make([]byte, 1))
	require.ErrorIs(t, err, unix.EAGAIN)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestSockaddrZones(t *testing.T) {
	sa := sockaddr(netip.MustParseAddrPort("[fe80::1%7]:443")).(*unix.SockaddrInet6)
	require.Equal(t, uint32(7), sa.ZoneId)
	require.Equal(t, 443, sa.Port)

	sa = sockaddr(netip.MustParseAddrPort("[fe80::1%no-such-if0]:443")).(*unix.SockaddrInet6)
	require.Zero(t, sa.ZoneId)

	ifs, err := net.Interfaces()
	require.NoError(t, err)
	for _, ifi := range ifs {
		if ifi.Flags&net.FlagLoopback == 0 {
			continue
		}
		sa = sockaddr(netip.AddrPortFrom(netip.MustParseAddr("fe80::1").WithZone(ifi.Name), 443)).(*unix.SockaddrInet6)
		require.Equal(t, uint32(ifi.Index), sa.ZoneId)
		break
	}

	sa4 := sockaddr(netip.MustParseAddrPort("192.0.2.1:80")).(*unix.SockaddrInet4)
	require.Equal(t, [4]byte{192, 0, 2, 1}, sa4.Addr)
}
