package state

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"time"

	"github.com/mt-inside/tls-connect/pkg/utils"
)

// ProbeData is what one connection attempt found out, for printing.
type ProbeData struct {
	Target    string
	Resolver  string
	Transport string

	// nil means no SNI extension was sent
	TlsServerName *string
	TlsClientPair *Keypair

	TlsServerCerts []*x509.Certificate

	TlsAgreedTime        time.Time
	TlsAgreedVersion     uint16
	TlsAgreedCipherSuite uint16
	TlsAgreedALPN        string
	TlsOCSPStapled       bool
	TlsResumed           bool
}

func NewProbeData(target, transport string, serverName *string, cfg *Config, cs tls.ConnectionState) *ProbeData {
	return &ProbeData{
		Target:               target,
		Transport:            transport,
		TlsServerName:        serverName,
		TlsClientPair:        cfg.Keypair,
		TlsServerCerts:       cs.PeerCertificates,
		TlsAgreedTime:        time.Now(),
		TlsAgreedVersion:     cs.Version,
		TlsAgreedCipherSuite: cs.CipherSuite,
		TlsAgreedALPN:        cs.NegotiatedProtocol,
		TlsOCSPStapled:       len(cs.OCSPResponse) > 0,
		TlsResumed:           cs.DidResume,
	}
}

func (pD *ProbeData) Print(w io.Writer, s utils.Styler, cfg *Config, printChain bool) {
	s.Banner(w, "Connection")
	if pD.Resolver != "" {
		fmt.Fprintf(w, "Names resolved by %s\n", s.Noun(pD.Resolver))
	}
	fmt.Fprintf(w, "Connected to %s over %s\n", s.Addr(pD.Target), s.Noun(pD.Transport))

	s.Banner(w, "TLS")

	fmt.Fprintf(w, "Request: ")
	if pD.TlsServerName != nil {
		fmt.Fprintf(w, "SNI ServerName %s\n", s.Addr(*pD.TlsServerName))
	} else {
		fmt.Fprintf(w, "Not sending SNI ServerName. Set one with --sni; address literals are never sent.\n")
	}
	if pD.TlsClientPair != nil {
		fmt.Fprintf(w, "Presenting %s client credential\n", s.Noun(pD.TlsClientPair.KeyType()))
		if leaf, err := pD.TlsClientPair.Leaf(); err == nil && printChain {
			fmt.Fprintln(w, s.CertBasics(leaf))
		}
	}
	fmt.Fprintln(w)

	/* Print cert chain */

	fmt.Fprintln(w, "Received serving cert chain")
	if printChain {
		for _, cert := range pD.TlsServerCerts {
			fmt.Fprintln(w, s.CertBasics(cert))
		}
		if len(pD.TlsServerCerts) > 0 {
			leaf := pD.TlsServerCerts[0]
			fmt.Fprintf(w, "\tDNS SANs %s\n", s.DNSList(leaf.DNSNames))
			fmt.Fprintf(w, "\tIP SANs %s\n", s.IPList(leaf.IPAddresses))
		}
	}
	pD.printVerification(w, s, cfg)
	fmt.Fprintln(w)

	/* TLS agreement summary */

	fmt.Fprintf(w, "%s handshake complete at %s\n", s.Noun(tls.VersionName(pD.TlsAgreedVersion)), s.Info(pD.TlsAgreedTime.Format(utils.TimeFmt)))
	fmt.Fprintf(w, "\tSymmetric cypher suite %s\n", s.Noun(tls.CipherSuiteName(pD.TlsAgreedCipherSuite)))
	fmt.Fprintf(w, "\tALPN proto %s\n", s.OptionalString(pD.TlsAgreedALPN, s.NounStyle))
	fmt.Fprintf(w, "\tOCSP info stapled to response? %s\n", s.YesNo(pD.TlsOCSPStapled))
	fmt.Fprintf(w, "\tResumed? %s\n", s.YesNo(pD.TlsResumed))
}

// printVerification reports what the engine checked. The handshake has already succeeded, so anything checked passed.
func (pD *ProbeData) printVerification(w io.Writer, s utils.Styler, cfg *Config) {
	roots := "system roots"
	if len(cfg.TlsServingCAs) > 0 {
		roots = fmt.Sprintf("%d configured CA(s)", len(cfg.TlsServingCAs))
	}

	if cfg.VerifyCert {
		fmt.Fprintf(w, "\tchain verified against %s? %s\n", s.Info(roots), s.YesNo(true))
	} else {
		s.PrintWarn(w, "serving chain NOT verified")
	}

	if !cfg.VerifyName {
		s.PrintWarn(w, "serving cert's names NOT checked")
		return
	}
	if pD.TlsServerName != nil {
		fmt.Fprintf(w, "\tvalid for %s? %s\n", s.Addr(*pD.TlsServerName), s.YesNo(true))
	}
}
