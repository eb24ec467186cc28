package state

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Names of the general-purpose resolvers, used after the numeric-literal checks fail.
const (
	ResolverSystem = "system" // net.Resolver; Go or libc depending on build
	ResolverDNS    = "dns"    // straight to the resolv.conf nameservers
	ResolverDNSSEC = "dnssec" // as dns, but answers must validate
)

const DefaultResolvConf = "/etc/resolv.conf"

// Config is the client policy a session is bootstrapped with. It's read, never written, by the session.
type Config struct {
	// Verify the serving chain against TlsServingCAs (system roots if empty)
	VerifyCert bool
	// Verify the serving cert's names against the SNI ServerName; needs one to be present
	VerifyName bool

	TlsServingCAs []*x509.Certificate
	// Local credential, optional. Not owned by us.
	Keypair *Keypair

	// Not supported; setting this makes every bootstrap fail rather than silently not stapling
	OCSPRequireStapling bool

	ALPN       []string
	MinVersion uint16
	MaxVersion uint16

	Resolver   string
	ResolvConf string
}

func DefaultConfig() *Config {
	return &Config{
		VerifyCert: true,
		VerifyName: true,
		Resolver:   ResolverSystem,
		ResolvConf: DefaultResolvConf,
	}
}

func ConfigFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	cfg.VerifyCert = !v.GetBool("insecure")
	cfg.VerifyName = !v.GetBool("insecure") && !v.GetBool("no-verify-name")
	cfg.OCSPRequireStapling = v.GetBool("require-ocsp-stapling")
	cfg.ALPN = v.GetStringSlice("alpn")

	if r := v.GetString("resolver"); r != "" {
		switch r {
		case ResolverSystem, ResolverDNS, ResolverDNSSEC:
			cfg.Resolver = r
		default:
			return nil, fmt.Errorf("unknown resolver %q", r)
		}
	}
	if rc := v.GetString("resolv-conf"); rc != "" {
		cfg.ResolvConf = rc
	}

	var err error
	if cfg.MinVersion, err = ParseTLSVersion(v.GetString("tls-min")); err != nil {
		return nil, err
	}
	if cfg.MaxVersion, err = ParseTLSVersion(v.GetString("tls-max")); err != nil {
		return nil, err
	}

	/* Load TLS material */

	if v.GetString("cert") != "" || v.GetString("key") != "" {
		cfg.Keypair, err = LoadKeypair(v.GetString("cert"), v.GetString("key"))
		if err != nil {
			return nil, err
		}
	}

	for _, caPath := range v.GetStringSlice("ca") {
		cas, err := LoadCertificates(caPath)
		if err != nil {
			return nil, err
		}
		cfg.TlsServingCAs = append(cfg.TlsServingCAs, cas...)
	}

	return cfg, nil
}

// ParseTLSVersion takes eg "1.2". Empty means "engine default", returned as 0.
func ParseTLSVersion(s string) (uint16, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "tls") {
	case "":
		return 0, nil
	case "1.0", "10":
		return tls.VersionTLS10, nil
	case "1.1", "11":
		return tls.VersionTLS11, nil
	case "1.2", "12":
		return tls.VersionTLS12, nil
	case "1.3", "13":
		return tls.VersionTLS13, nil
	}
	return 0, fmt.Errorf("unknown TLS version %q", s)
}

// LoadCertificates reads every CERTIFICATE block from a PEM file.
func LoadCertificates(path string) ([]*x509.Certificate, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, bytes = pem.Decode(bytes)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.New(path + ": no certificates found")
	}

	return certs, nil
}
