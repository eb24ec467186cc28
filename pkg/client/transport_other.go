//go:build !unix

package client

import (
	"errors"
	"net"
)

func newFDConn(fds DescriptorPair) (net.Conn, error) {
	return nil, errors.ErrUnsupported
}
