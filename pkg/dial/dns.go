package dial

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/go-logr/logr"
	"github.com/miekg/dns"
	"github.com/peterzen/goresolver"
)

/* These only look in DNS, like say nslookup does.
 * No /etc/hosts, no nsswitch; use the system strategy for that.
 */

// DNSStrategy queries the resolv.conf nameservers directly, walking the search path.
type DNSStrategy struct {
	Log        logr.Logger
	ResolvConf string
	Config     *dns.ClientConfig // overrides ResolvConf
	Timeout    time.Duration
	AddrConfig AddrConfig
}

func (s DNSStrategy) Name() string { return "dns" }

func (s DNSStrategy) clientConfig() (*dns.ClientConfig, error) {
	if s.Config != nil {
		return s.Config, nil
	}
	return dns.ClientConfigFromFile(s.ResolvConf)
}

func (s DNSStrategy) Resolve(ctx context.Context, host string, port uint16) ([]Candidate, error) {
	dnsConfig, err := s.clientConfig()
	if err != nil {
		return nil, err
	}
	if len(dnsConfig.Servers) == 0 {
		return nil, errors.New("no DNS servers configured")
	}

	timeout := s.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	c := &dns.Client{
		Dialer: &net.Dialer{Timeout: timeout},
	}

	names := dnsConfig.NameList(host)

	err = errors.New("all DNS servers failed")
	for _, serverHost := range dnsConfig.Servers {
		server := net.JoinHostPort(serverHost, dnsConfig.Port)
		s.Log.V(2).Info("Trying DNS server", "addr", server)

		var addrs []netip.Addr
		addrs, err = s.queryServer(ctx, c, server, names)
		if err != nil {
			// Server's broken or unreachable, not an answer
			continue
		}
		if len(addrs) == 0 {
			return nil, ErrNoAddresses
		}

		addrs = s.AddrConfig.Filter(addrs)
		if len(addrs) == 0 {
			return nil, ErrNoAddresses
		}
		return candidatesFor(addrs, port), nil
	}

	return nil, err
}

// queryServer walks the search path against one server. The first FQDN with any A or AAAA answers wins.
func (s DNSStrategy) queryServer(ctx context.Context, c *dns.Client, server string, names []string) ([]netip.Addr, error) {
	for _, name := range names {
		s.Log.V(2).Info("Trying search path item", "fqdn", name)

		var addrs []netip.Addr
		for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
			m := new(dns.Msg)
			// By default this asks the server to recurse for us
			m.SetQuestion(name, qtype)

			in, _, err := c.ExchangeContext(ctx, m, server)
			if err != nil {
				return nil, err
			}
			if in.Rcode != dns.RcodeSuccess && in.Rcode != dns.RcodeNameError {
				return nil, fmt.Errorf("%s: %s", server, dns.RcodeToString[in.Rcode])
			}

			addrs = append(addrs, addrsFromRRs(in.Answer)...)
		}

		if len(addrs) > 0 {
			return addrs, nil
		}
	}

	return nil, nil
}

// addrsFromRRs ignores everything but A and AAAA; a CNAME chain is answered in full by a recursive server.
func addrsFromRRs(rrs []dns.RR) []netip.Addr {
	var addrs []netip.Addr
	for _, rr := range rrs {
		var ip net.IP
		switch t := rr.(type) {
		case *dns.A:
			ip = t.A
		case *dns.AAAA:
			ip = t.AAAA
		default:
			continue
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

// DNSSECStrategy only returns answers whose signatures validate all the way to the root.
//
// Validation's done by goresolver: recursive resolvers are known to strip DNSSEC records, let alone validate them.
// There's no search path; host is taken as an FQDN.
type DNSSECStrategy struct {
	ResolvConf string
	AddrConfig AddrConfig
}

func (s DNSSECStrategy) Name() string { return "dnssec" }

func (s DNSSECStrategy) Resolve(_ context.Context, host string, port uint16) ([]Candidate, error) {
	resolver, err := goresolver.NewResolver(s.ResolvConf)
	if err != nil {
		return nil, err
	}

	var addrs []netip.Addr
	var firstErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		rrs, err := resolver.StrictNSQuery(dns.Fqdn(host), qtype)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("dnssec %s: %w", dns.TypeToString[qtype], err)
			}
			continue
		}
		addrs = append(addrs, addrsFromRRs(rrs)...)
	}
	if len(addrs) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, ErrNoAddresses
	}

	addrs = s.AddrConfig.Filter(addrs)
	if len(addrs) == 0 {
		return nil, ErrNoAddresses
	}
	return candidatesFor(addrs, port), nil
}
