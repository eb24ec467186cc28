// Package client bootstraps TLS client sessions: it resolves and connects (or takes an existing transport),
// derives the SNI ServerName, configures an engine connection, and leaves it ready to handshake.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"net"

	"github.com/go-logr/logr"

	"github.com/mt-inside/tls-connect/pkg/dial"
	"github.com/mt-inside/tls-connect/pkg/engine"
	"github.com/mt-inside/tls-connect/pkg/state"
)

type Role int

const (
	RoleNone Role = iota
	RoleClient
)

// State only ever moves forward, NotConnected -> Connected.
// Connected means bootstrap is done and a transport is bound, not that the handshake has finished.
type State int

const (
	StateNotConnected State = iota
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	default:
		return "not-connected"
	}
}

// Session is one logical client connection attempt. Not safe for concurrent use.
type Session struct {
	log    logr.Logger
	role   Role
	state  State
	config *state.Config

	engine    engine.Engine
	resolver  *dial.Resolver // built from config on first use if nil
	connector *dial.Connector

	serverName *string
	transport  Transport
	conn       engine.Conn
	socket     int
	ownSocket  bool // we dialed socket, so it's ours to close

	err error
}

type Option func(*Session)

func WithEngine(e engine.Engine) Option {
	return func(s *Session) { s.engine = e }
}

func WithResolver(r *dial.Resolver) Option {
	return func(s *Session) { s.resolver = r }
}

func WithConnector(c *dial.Connector) Option {
	return func(s *Session) { s.connector = c }
}

// New makes a client session. A nil config means state.DefaultConfig().
func New(log logr.Logger, cfg *state.Config, opts ...Option) *Session {
	if cfg == nil {
		cfg = state.DefaultConfig()
	}

	s := &Session{
		log:    log,
		role:   RoleClient,
		state:  StateNotConnected,
		config: cfg,
	}
	for _, o := range opts {
		o(s)
	}

	if s.engine == nil {
		s.engine = engine.NewStd(log.WithName("engine"))
	}
	if s.connector == nil {
		s.connector = dial.NewConnector(log.WithName("connector"))
	}

	return s
}

func (s *Session) Role() Role { return s.role }
func (s *Session) State() State { return s.state }
func (s *Session) Config() *state.Config { return s.config }
func (s *Session) Transport() Transport { return s.transport }
func (s *Session) Err() error { return s.err }

// ServerName is the SNI that was (or will be) sent. ok is false if there's none.
func (s *Session) ServerName() (name string, ok bool) {
	if s.serverName == nil {
		return "", false
	}
	return *s.serverName, true
}

// Socket is the descriptor the session dialed itself, or -1.
func (s *Session) Socket() int {
	if !s.ownSocket {
		return -1
	}
	return s.socket
}

func (s *Session) fail(err error) error {
	s.err = err
	if err != nil {
		s.log.V(1).Info("Session error", "error", err)
	}
	return err
}

func (s *Session) resolverFor() (*dial.Resolver, error) {
	if s.resolver != nil {
		return s.resolver, nil
	}
	general, err := dial.GeneralStrategy(s.log.WithName("resolver"), s.config)
	if err != nil {
		return nil, wrap(ErrConfig, err)
	}
	s.resolver = dial.NewResolver(s.log.WithName("resolver"), general)
	return s.resolver, nil
}

/* Post-bootstrap: all delegated to the engine */

func (s *Session) Handshake(ctx context.Context) error {
	if s.state != StateConnected {
		return s.fail(ErrNotConnected)
	}
	if s.conn == nil {
		return net.ErrClosed
	}
	if err := s.conn.Handshake(ctx); err != nil {
		return s.fail(wrap(ErrEngine, err))
	}
	return nil
}

func (s *Session) Read(p []byte) (int, error) {
	if s.state != StateConnected {
		return 0, ErrNotConnected
	}
	if s.conn == nil {
		return 0, net.ErrClosed
	}
	return s.conn.Read(p)
}

func (s *Session) Write(p []byte) (int, error) {
	if s.state != StateConnected {
		return 0, ErrNotConnected
	}
	if s.conn == nil {
		return 0, net.ErrClosed
	}
	return s.conn.Write(p)
}

func (s *Session) ConnectionState() tls.ConnectionState {
	if s.conn == nil {
		return tls.ConnectionState{}
	}
	return s.conn.ConnectionState()
}

// Close tears down the engine connection, then the socket if we dialed it.
// Descriptors and callbacks supplied by the caller are left alone.
func (s *Session) Close() error {
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
		s.conn = nil
	}
	// Only ConnectServerName sets ownSocket, and it always has a connector
	if s.ownSocket && s.connector != nil {
		errs = append(errs, s.connector.Sockets.Close(s.socket))
	}
	s.ownSocket = false
	return errors.Join(errs...)
}
