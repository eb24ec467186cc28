//go:build unix

package dial

import (
	"net"
	"net/netip"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

type unixSockets struct{}

// SystemSockets is the real, blocking, socket layer.
func SystemSockets() Sockets {
	return unixSockets{}
}

func (unixSockets) Socket(family, sotype, proto int) (int, error) {
	fd, err := unix.Socket(family, sotype, proto)
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

func (unixSockets) Connect(fd int, addr netip.AddrPort) error {
	return unix.Connect(fd, sockaddr(addr))
}

func (unixSockets) Close(fd int) error {
	return unix.Close(fd)
}

// SetIOTimeout bounds every blocking read and write on fd; zero means block forever.
func SetIOTimeout(fd int, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return err
	}
	return unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv)
}

func sockaddr(ap netip.AddrPort) unix.Sockaddr {
	addr := ap.Addr()
	if addr.Is4() {
		return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: addr.As4()}
	}

	sa := &unix.SockaddrInet6{Port: int(ap.Port()), Addr: addr.As16()}
	if zone := addr.Zone(); zone != "" {
		if idx, err := strconv.ParseUint(zone, 10, 32); err == nil {
			sa.ZoneId = uint32(idx)
		} else if ifi, err := net.InterfaceByName(zone); err == nil {
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return sa
}
