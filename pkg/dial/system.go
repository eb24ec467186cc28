package dial

import (
	"context"
	"net"
	"net/netip"
)

// IPLookuper is satisfied by *net.Resolver.
type IPLookuper interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// SystemStrategy asks the platform resolver: Go's own, or libc's getaddrinfo() under cgo.
// That honours /etc/hosts (and nsswitch when it's libc), which the dns strategies don't.
type SystemStrategy struct {
	Lookup     IPLookuper // defaults to net.DefaultResolver
	AddrConfig AddrConfig
}

func (s SystemStrategy) Name() string { return "system" }

func (s SystemStrategy) Resolve(ctx context.Context, host string, port uint16) ([]Candidate, error) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = net.DefaultResolver
	}

	addrs, err := lookup.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}

	addrs = s.AddrConfig.Filter(addrs)
	if len(addrs) == 0 {
		return nil, ErrNoAddresses
	}

	return candidatesFor(addrs, port), nil
}
