package dial

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/go-logr/logr"

	"github.com/mt-inside/tls-connect/pkg/state"
)

// Sockets is the blocking socket layer the Connector drives.
type Sockets interface {
	Socket(family, sotype, proto int) (fd int, err error)
	Connect(fd int, addr netip.AddrPort) error
	Close(fd int) error
}

// Connector tries candidates in order and stops at the first that connects.
type Connector struct {
	Log     logr.Logger
	Sockets Sockets
	// Report every candidate's error rather than just the last one's
	Aggregate bool
}

func NewConnector(log logr.Logger) *Connector {
	return &Connector{Log: log, Sockets: SystemSockets()}
}

// Connect returns a connected descriptor, now owned by the caller.
// On failure nothing is left open, and the error is the last candidate's (unless Aggregate is set).
func (c *Connector) Connect(cands []Candidate) (int, error) {
	if len(cands) == 0 {
		return -1, ErrNoAddresses
	}

	var errs []error
	for _, cand := range cands {
		fd, err := c.Sockets.Socket(cand.Family, cand.SockType, cand.Protocol)
		if err != nil {
			c.Log.V(1).Info("socket failed", "candidate", cand, "error", err)
			errs = append(errs, fmt.Errorf("socket %s: %w", cand, err))
			continue
		}

		c.Log.V(1).Info("Dialing", "addr", cand.Addr)
		if err := c.Sockets.Connect(fd, cand.Addr); err != nil {
			c.Log.V(1).Info("connect failed", "candidate", cand, "error", err)
			errs = append(errs, fmt.Errorf("connect %s: %w", cand, err))
			_ = c.Sockets.Close(fd)
			continue
		}

		c.Log.V(1).Info("Connected", "to", cand.Addr, "fd", fd)
		return fd, nil
	}

	if c.Aggregate {
		return -1, errors.Join(errs...)
	}
	return -1, errs[len(errs)-1]
}

// GeneralStrategy picks the name-resolving strategy the config asks for.
func GeneralStrategy(log logr.Logger, cfg *state.Config) (Strategy, error) {
	switch cfg.Resolver {
	case "", state.ResolverSystem:
		return SystemStrategy{}, nil
	case state.ResolverDNS:
		return DNSStrategy{Log: log, ResolvConf: cfg.ResolvConf}, nil
	case state.ResolverDNSSEC:
		return DNSSECStrategy{ResolvConf: cfg.ResolvConf}, nil
	}
	return nil, fmt.Errorf("unknown resolver %q", cfg.Resolver)
}
