package client

import (
	"context"
	"net"
)

// Connect dials host and bootstraps over the new socket, sending host as the SNI ServerName (if it's a name).
// With an empty port, host must carry one: "name:port" or "[v6]:port".
func (s *Session) Connect(ctx context.Context, host, port string) error {
	return s.ConnectServerName(ctx, host, port, nil)
}

// ConnectServerName is Connect with an explicit SNI ServerName; nil means use host.
func (s *Session) ConnectServerName(ctx context.Context, host, port string, servername *string) error {
	if s.role != RoleClient {
		return s.fail(ErrNotClient)
	}
	if s.state != StateNotConnected {
		return s.fail(ErrAlreadyConnected)
	}
	if host == "" {
		return s.fail(ErrNoHost)
	}

	h, p := host, port
	if p == "" {
		var err error
		h, p, err = net.SplitHostPort(host)
		if err != nil || p == "" {
			return s.fail(ErrNoPort)
		}
		if h == "" {
			return s.fail(ErrNoHost)
		}
	}

	resolver, err := s.resolverFor()
	if err != nil {
		return s.fail(err)
	}
	cands, err := resolver.Resolve(ctx, h, p)
	if err != nil {
		return s.fail(wrap(ErrResolve, err))
	}

	// Now we own fd until it's handed to the session, or closed
	fd, err := s.connector.Connect(cands)
	if err != nil {
		return s.fail(wrap(ErrConnect, err))
	}

	if servername == nil {
		servername = &h
	}

	if err := s.ConnectSocket(fd, servername); err != nil {
		_ = s.connector.Sockets.Close(fd)
		return err
	}
	s.socket, s.ownSocket = fd, true

	return nil
}

// ConnectSocket bootstraps over one already-connected, bidirectional descriptor, which stays the caller's.
func (s *Session) ConnectSocket(fd int, servername *string) error {
	return s.ConnectFDs(fd, fd, servername)
}

// ConnectFDs bootstraps over a read and a write descriptor, which stay the caller's.
// There's no default SNI ServerName.
func (s *Session) ConnectFDs(readFD, writeFD int, servername *string) error {
	t := DescriptorPair{Read: readFD, Write: writeFD}
	if !t.valid() {
		return s.fail(ErrInvalidDescriptors)
	}

	conn, sni, err := s.bootstrap(servername)
	if err != nil {
		return s.fail(err)
	}

	return s.fail(s.bind(conn, sni, t))
}

// ConnectCallbacks bootstraps with all I/O going through read and write; arg is handed to both.
// There's no default SNI ServerName.
func (s *Session) ConnectCallbacks(read ReadFunc, write WriteFunc, arg any, servername *string) error {
	conn, sni, err := s.bootstrap(servername)
	if err != nil {
		return s.fail(err)
	}

	t := CallbackPair{Read: read, Write: write, Arg: arg}
	if !t.valid() {
		conn.Release()
		return s.fail(ErrNoCallbacks)
	}

	return s.fail(s.bind(conn, sni, t))
}
