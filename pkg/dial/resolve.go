package dial

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
)

var ErrNoAddresses = errors.New("no address associated with hostname")

// Candidate is one resolved address eligible for a connection attempt.
type Candidate struct {
	Family   int // syscall.AF_INET or syscall.AF_INET6
	SockType int
	Protocol int
	Addr     netip.AddrPort
}

func (c Candidate) String() string {
	fam := "inet"
	if c.Family == syscall.AF_INET6 {
		fam = "inet6"
	}
	return fam + "/" + c.Addr.String()
}

func streamCandidate(addr netip.Addr, port uint16) Candidate {
	fam := syscall.AF_INET
	if addr.Is6() {
		fam = syscall.AF_INET6
	}
	return Candidate{
		Family:   fam,
		SockType: syscall.SOCK_STREAM,
		Protocol: syscall.IPPROTO_TCP,
		Addr:     netip.AddrPortFrom(addr, port),
	}
}

// Strategy is one way of turning a host into candidates.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, host string, port uint16) ([]Candidate, error)
}

// Resolver tries its strategies in order, returning the first non-empty answer.
//
// Numeric IPv4 and IPv6 literals are always tried first, before anything that does name resolution.
// A general resolver that filters on configured interface families would otherwise refuse eg 127.0.0.1 or ::1
// on a host with no non-loopback v4 / v6 address.
type Resolver struct {
	log        logr.Logger
	strategies []Strategy
}

func NewResolver(log logr.Logger, general Strategy) *Resolver {
	return &Resolver{
		log: log,
		strategies: []Strategy{
			NumericStrategy{V6: false},
			NumericStrategy{V6: true},
			general,
		},
	}
}

// Resolve returns a non-empty, ordered candidate list.
// Only the last strategy's error is reported; the earlier ones are literal checks, and their failure just means "not a literal".
func (r *Resolver) Resolve(ctx context.Context, host, port string) ([]Candidate, error) {
	if host == "" {
		return nil, errors.New("host not specified")
	}
	p, err := LookupPort(ctx, port)
	if err != nil {
		return nil, err
	}

	for i, s := range r.strategies {
		cands, err := s.Resolve(ctx, host, p)
		if err == nil && len(cands) == 0 {
			err = ErrNoAddresses
		}
		if err == nil {
			r.log.V(1).Info("Resolved", "host", host, "strategy", s.Name(), "candidates", len(cands))
			return cands, nil
		}
		if i == len(r.strategies)-1 {
			return nil, fmt.Errorf("%s: %w", host, err)
		}
		r.log.V(2).Info("Resolution strategy didn't apply", "host", host, "strategy", s.Name(), "reason", err)
	}

	return nil, ErrNoAddresses // only with an empty strategy list
}

// LookupPort takes a decimal port or a service name. Service names come from the local services database, never DNS.
func LookupPort(ctx context.Context, port string) (uint16, error) {
	if port == "" {
		return 0, errors.New("no port provided")
	}
	if n, err := strconv.ParseUint(port, 10, 16); err == nil {
		return uint16(n), nil
	}
	n, err := net.DefaultResolver.LookupPort(ctx, "tcp", port)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

// NumericStrategy only accepts a literal address of one family. It never generates network traffic.
type NumericStrategy struct {
	V6 bool
}

func (s NumericStrategy) Name() string {
	if s.V6 {
		return "numeric-inet6"
	}
	return "numeric-inet"
}

func (s NumericStrategy) Resolve(_ context.Context, host string, port uint16) ([]Candidate, error) {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		if s.V6 {
			return nil, err
		}
		var ok bool
		if addr, ok = parseInetAton(host); !ok {
			return nil, err
		}
	}
	if s.V6 != addr.Is6() {
		return nil, fmt.Errorf("%s is not an %s literal", host, s.Name())
	}
	return []Candidate{streamCandidate(addr, port)}, nil
}

// parseInetAton accepts the legacy IPv4 forms inet_aton(3) does: one to four parts, each decimal, 0-prefixed octal, or 0x-prefixed hex,
// the last part filling all the remaining bytes. eg "127.1", "0x7f.1", "2130706433".
func parseInetAton(s string) (netip.Addr, bool) {
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return netip.Addr{}, false
	}

	var n uint64
	for i, p := range parts {
		base := 10
		switch {
		case len(p) > 2 && (p[:2] == "0x" || p[:2] == "0X"):
			base, p = 16, p[2:]
		case len(p) > 1 && p[0] == '0':
			base, p = 8, p[1:]
		}
		v, err := strconv.ParseUint(p, base, 32)
		if err != nil {
			return netip.Addr{}, false
		}

		if i < len(parts)-1 {
			if v > 0xff {
				return netip.Addr{}, false
			}
			n |= v << (8 * (3 - i))
			continue
		}
		// Last part covers bytes i..3
		if v >= 1<<(8*(4-i)) {
			return netip.Addr{}, false
		}
		n |= v
	}

	return netip.AddrFrom4([4]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}), true
}

// AddrConfig keeps the address families that are configured on a local, non-loopback interface.
// Loopback addresses are always kept.
type AddrConfig struct {
	// Defaults to net.InterfaceAddrs
	InterfaceAddrs func() ([]net.Addr, error)
}

func (a AddrConfig) configured() (has4, has6 bool) {
	ifAddrs := a.InterfaceAddrs
	if ifAddrs == nil {
		ifAddrs = net.InterfaceAddrs
	}
	addrs, err := ifAddrs()
	if err != nil {
		// Can't tell, so don't filter
		return true, true
	}

	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}
		addr, ok := netip.AddrFromSlice(ip)
		if !ok || addr.Unmap().IsLoopback() {
			continue
		}
		if addr.Unmap().Is4() {
			has4 = true
		} else {
			has6 = true
		}
	}
	return
}

func (a AddrConfig) Filter(addrs []netip.Addr) []netip.Addr {
	has4, has6 := a.configured()

	var kept []netip.Addr
	for _, addr := range addrs {
		addr = addr.Unmap()
		switch {
		case addr.IsLoopback():
		case addr.Is4() && !has4:
			continue
		case addr.Is6() && !has6:
			continue
		}
		kept = append(kept, addr)
	}
	return kept
}

func candidatesFor(addrs []netip.Addr, port uint16) []Candidate {
	var cands []Candidate
	seen := map[netip.Addr]struct{}{}
	for _, addr := range addrs {
		addr = addr.Unmap()
		if _, found := seen[addr]; found {
			continue
		}
		seen[addr] = struct{}{}
		cands = append(cands, streamCandidate(addr, port))
	}
	return cands
}
