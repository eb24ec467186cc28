//go:build !unix

package dial

import (
	"errors"
	"net/netip"
	"time"
)

type noSockets struct{}

func SystemSockets() Sockets {
	return noSockets{}
}

func (noSockets) Socket(int, int, int) (int, error) { return -1, errors.ErrUnsupported }
func (noSockets) Connect(int, netip.AddrPort) error { return errors.ErrUnsupported }
func (noSockets) Close(int) error { return errors.ErrUnsupported }

func SetIOTimeout(int, time.Duration) error { return errors.ErrUnsupported }
